package models

import "time"

// Action is the directional outcome of an indicator, a fused vote or a
// trade decision.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Score maps the action onto a signed axis: buy +1, sell -1, hold 0.
func (a Action) Score() float64 {
	switch a {
	case ActionBuy:
		return 1
	case ActionSell:
		return -1
	default:
		return 0
	}
}

// Tradeable reports whether the action opens a position.
func (a Action) Tradeable() bool { return a == ActionBuy || a == ActionSell }

// Opposite returns the reverse direction, hold stays hold.
func (a Action) Opposite() Action {
	switch a {
	case ActionBuy:
		return ActionSell
	case ActionSell:
		return ActionBuy
	default:
		return ActionHold
	}
}

// FusionMethod selects how indicator votes are combined.
type FusionMethod string

const (
	FusionWeightedAverage FusionMethod = "weighted_average"
	FusionMajorityVote    FusionMethod = "majority_vote"
	FusionConservative    FusionMethod = "conservative"
	FusionAggressive      FusionMethod = "aggressive"
)

// IndicatorSignal is the output of a single technical indicator.
type IndicatorSignal struct {
	Indicator string
	Action    Action
	Strength  float64
	Reason    string
	Values    map[string]float64
}

// IndicatorSummary is the compact per-indicator view carried on decisions.
type IndicatorSummary struct {
	Action   Action
	Strength float64
	Reason   string
}

// FusedDecision is the combined outcome of all enabled indicators.
type FusedDecision struct {
	Action        Action
	Confidence    float64
	Score         float64
	Agreement     float64
	FullAgreement bool
	Method        FusionMethod
	Source        string
	Votes         map[Action]int
	Indicators    map[string]IndicatorSummary
	Reasoning     string
}

// ConfidenceLevel buckets a confidence score for human consumption.
type ConfidenceLevel string

const (
	ConfidenceVeryLow  ConfidenceLevel = "very_low"
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
)

// ConfidenceFactors are the normalized components behind a confidence score.
type ConfidenceFactors struct {
	Agreement  float64
	Strength   float64
	Volatility float64
	Volume     float64
}

// SignalDecision is the signal agent's verdict for one pair and timeframe.
type SignalDecision struct {
	Pair        string
	Timeframe   string
	Action      Action
	Confidence  float64
	Level       ConfidenceLevel
	ShouldTrade bool
	Method      FusionMethod
	Factors     ConfidenceFactors
	Indicators  map[string]IndicatorSummary
	Reasoning   string
	Price       float64
	Timestamp   time.Time
}
