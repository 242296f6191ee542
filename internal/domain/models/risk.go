package models

import "time"

// AccountState is the slice of account data the risk checks operate on.
type AccountState struct {
	Balance         float64
	OpenTrades      int
	DailyPnL        float64
	CurrentExposure float64
}

// SizingResult is the ATR-based position size for a single trade.
type SizingResult struct {
	PositionSize    float64
	PositionValue   float64
	PositionPct     float64
	RiskAmount      float64
	RiskPct         float64
	StopDistance    float64
	StopDistancePct float64
	ATR             float64
	ATRMultiplier   float64
}

// LeverageResult is a base size scaled by capped leverage.
type LeverageResult struct {
	BaseSize      float64
	Leverage      float64
	LeveragedSize float64
	MaxLeverage   float64
}

// KellyRecommendation classifies a Kelly fraction.
type KellyRecommendation string

const (
	KellyNoTrade    KellyRecommendation = "no_trade"
	KellyMax        KellyRecommendation = "max_kelly"
	KellyFractional KellyRecommendation = "fractional_kelly"
)

// KellyResult is the raw and safety-capped Kelly fraction for a strategy.
type KellyResult struct {
	FullKelly      float64
	SafeKelly      float64
	WinRate        float64
	WinLossRatio   float64
	Recommendation KellyRecommendation
	Reason         string
}

// KellyEstimate is a Kelly fraction derived from recorded trade outcomes.
type KellyEstimate struct {
	KellyResult
	Trades  int
	Wins    int
	Losses  int
	AvgWin  float64
	AvgLoss float64
}

// KellyAdjustment scales a Kelly fraction by signal confidence.
type KellyAdjustment struct {
	BaseKelly     float64
	Confidence    float64
	AdjustedKelly float64
}

// StopMethod selects how the protective stop is placed.
type StopMethod string

const (
	StopATR               StopMethod = "atr"
	StopFixedPct          StopMethod = "fixed_pct"
	StopSupportResistance StopMethod = "support_resistance"
)

// StopLossResult is a computed protective stop.
type StopLossResult struct {
	Method         StopMethod
	StopPrice      float64
	StopDistance   float64
	StopPct        float64
	ATR            float64
	ATRMultiplier  float64
	ReferenceLevel float64
	BufferPct      float64
}

// TPTarget is one take-profit level with its share of the position.
type TPTarget struct {
	Level         int
	Price         float64
	Distance      float64
	DistancePct   float64
	AllocationPct float64
}

// TakeProfitResult is the full ladder of take-profit targets.
type TakeProfitResult struct {
	RiskRewardRatio float64
	Risk            float64
	TotalReward     float64
	Targets         []TPTarget
}

// TradeLevels bundles entry, stop and targets for one trade.
type TradeLevels struct {
	EntryPrice float64
	Action     Action
	StopLoss   StopLossResult
	TakeProfit TakeProfitResult
	RiskPct    float64
	RewardPct  float64
}

// CheckResult is the outcome of one pre-trade risk check.
type CheckResult struct {
	Name        string
	Approved    bool
	Utilization float64
	Reason      string
	Warnings    []string
}

// RiskValidation aggregates all pre-trade checks into one verdict.
type RiskValidation struct {
	Approved  bool
	RiskScore float64
	Checks    []CheckResult
	Warnings  []string
}

// RiskDecision is the risk agent's verdict: an approved decision carries
// everything the position manager needs to execute.
type RiskDecision struct {
	Approved   bool
	Reason     string
	Pair       string
	Action     Action
	Confidence float64

	EntryPrice    float64
	PositionSize  float64
	PositionValue float64
	PositionPct   float64
	StopLoss      float64
	TakeProfit    float64
	TakeProfits   []TPTarget

	RiskAmount      float64
	RiskPct         float64
	RiskRewardRatio float64
	RiskScore       float64

	Sizing     *SizingResult
	Kelly      *KellyAdjustment
	Validation *RiskValidation
	Warnings   []string
	Timestamp  time.Time
}

// TradeOutcome is a closed trade's realized result, persisted for the
// Kelly history estimate.
type TradeOutcome struct {
	Pair     string
	OrderID  string
	PnL      float64
	OpenedAt time.Time
	ClosedAt time.Time
}
