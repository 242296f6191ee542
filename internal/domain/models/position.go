package models

import "time"

// OrderType is the execution style of an order.
type OrderType string

const (
	OrderMarket OrderType = "market"
	OrderLimit  OrderType = "limit"
)

// ExecStatus is the terminal state of an execution attempt.
type ExecStatus string

const (
	ExecExecuted ExecStatus = "executed"
	ExecRejected ExecStatus = "rejected"
	ExecFailed   ExecStatus = "failed"
)

// OrderRequest is what the executor sends to the trading gateway.
type OrderRequest struct {
	Pair       string
	Side       Action
	Amount     float64
	Type       OrderType
	Price      float64
	StopLoss   float64
	TakeProfit float64
	RequestID  string
	Agent      string
}

// OrderAck is the gateway's acknowledgement of a placed order.
type OrderAck struct {
	OrderID      string
	Status       string
	FilledAmount float64
	AveragePrice float64
}

// DryRunResult is the gateway's validation of an order without placing it.
type DryRunResult struct {
	Valid         bool
	EstimatedCost float64
	EstimatedFee  float64
	Warnings      []string
	Errors        []string
}

// ExecutionResult records one order's journey through the executor.
type ExecutionResult struct {
	Success      bool
	Status       ExecStatus
	Reason       string
	OrderID      string
	RequestID    string
	Pair         string
	Side         Action
	Amount       float64
	FilledAmount float64
	AveragePrice float64
	StopLoss     float64
	TakeProfit   float64
	Attempts     int
	DryRun       *DryRunResult
	Timestamp    time.Time
}

// TakeProfitTarget is one ladder level tracked by the take-profit manager.
// Hit is one-way: once true it never resets.
type TakeProfitTarget struct {
	Level         int
	Price         float64
	AllocationPct float64
	Amount        float64
	Hit           bool
	HitAt         *time.Time
	OrderID       string
}

// TakeProfitSetup is the tracked ladder for one open position.
type TakeProfitSetup struct {
	Pair      string
	Enabled   bool
	Reason    string
	Action    Action
	Targets   []TakeProfitTarget
	CreatedAt time.Time
}

// RemainingPosition summarizes how much of a laddered position is left.
type RemainingPosition struct {
	Pair         string
	RemainingPct float64
	ClosedPct    float64
	TargetsHit   int
	TotalTargets int
	AllHit       bool
}

// TrailingStopState is the tightening-only stop tracked for one position.
type TrailingStopState struct {
	Pair            string
	Action          Action
	EntryPrice      float64
	CurrentStop     float64
	ExtremePrice    float64
	DistancePct     float64
	ActivationPrice float64
	Activated       bool
	Updates         int
	CreatedAt       time.Time
	LastUpdate      time.Time
}

// TrailingStopUpdate reports a single stop adjustment.
type TrailingStopUpdate struct {
	Pair         string
	OldStop      float64
	NewStop      float64
	CurrentPrice float64
	ExtremePrice float64
	Updates      int
}

// PositionActionType labels what a price update triggered on a position.
type PositionActionType string

const (
	PositionTrailingUpdated PositionActionType = "trailing_stop_updated"
	PositionStopHit         PositionActionType = "stop_loss_hit"
	PositionTakeProfitHit   PositionActionType = "take_profit_hit"
)

// PositionAction is one event produced while monitoring an open position.
type PositionAction struct {
	Type      PositionActionType
	StopPrice float64
	Trailing  *TrailingStopUpdate
	Targets   []TakeProfitTarget
}

// PositionUpdate is the result of feeding one price tick to open positions.
type PositionUpdate struct {
	Pair         string
	CurrentPrice float64
	Actions      []PositionAction
	Timestamp    time.Time
}

// PositionResult is the position manager's final word on an approved
// decision: the execution outcome plus any protective state registered.
type PositionResult struct {
	Success      bool
	Status       ExecStatus
	Reason       string
	Pair         string
	Action       Action
	PositionSize float64
	EntryPrice   float64
	Execution    *ExecutionResult
	TakeProfit   *TakeProfitSetup
	Trailing     *TrailingStopState
	Timestamp    time.Time
}
