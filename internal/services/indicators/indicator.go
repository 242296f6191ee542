package indicators

import "TradeFlow/internal/domain/models"

// Canonical indicator names used for weights and reporting.
const (
	NameEMA               = "ema"
	NameRSI               = "rsi"
	NameMACD              = "macd"
	NameSupportResistance = "support_resistance"
)

// Indicator turns a candle window into a directional signal. A series
// too short for the indicator yields hold with strength 0.
type Indicator interface {
	Name() string
	Evaluate(s Series) models.IndicatorSignal
}

func holdSignal(name, reason string) models.IndicatorSignal {
	return models.IndicatorSignal{
		Indicator: name,
		Action:    models.ActionHold,
		Strength:  0,
		Reason:    reason,
	}
}
