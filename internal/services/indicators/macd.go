package indicators

import (
	"math"

	"TradeFlow/internal/domain/models"
)

// MACD tracks the spread between two exponential averages and its own
// signal line for momentum crossovers.
type MACD struct {
	Fast   int
	Slow   int
	Signal int
}

// NewMACD creates a MACD indicator with 12/26/9 defaults.
func NewMACD(fast, slow, signal int) *MACD {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}
	return &MACD{Fast: fast, Slow: slow, Signal: signal}
}

func (m *MACD) Name() string { return NameMACD }

func (m *MACD) Evaluate(s Series) models.IndicatorSignal {
	if len(s) < m.Slow+m.Signal {
		return holdSignal(NameMACD, "insufficient data for MACD calculation")
	}

	closes := s.Closes()
	fast := EWM(closes, m.Fast)
	slow := EWM(closes, m.Slow)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := EWM(line, m.Signal)

	n := len(closes)
	macd, macdPrev := line[n-1], line[n-2]
	sig, sigPrev := signal[n-1], signal[n-2]
	hist := macd - sig
	histPrev := macdPrev - sigPrev
	price := closes[n-1]

	bullishCross := macd > sig && macdPrev <= sigPrev
	bearishCross := macd < sig && macdPrev >= sigPrev
	turningPositive := hist > 0 && histPrev <= 0
	turningNegative := hist < 0 && histPrev >= 0

	// Histogram of 0.5% of price maps to full strength.
	histPct := math.Abs(hist) / price * 100
	strength := math.Min(histPct/0.5, 1.0)

	action := models.ActionHold
	reason := "MACD neutral"

	switch {
	case bullishCross:
		action = models.ActionBuy
		if macd > 0 {
			reason = "MACD bullish crossover above zero line"
			strength = math.Min(strength*1.3, 1.0)
		} else {
			reason = "MACD bullish crossover below zero line"
			strength *= 0.9
		}
	case bearishCross:
		action = models.ActionSell
		if macd < 0 {
			reason = "MACD bearish crossover below zero line"
			strength = math.Min(strength*1.3, 1.0)
		} else {
			reason = "MACD bearish crossover above zero line"
			strength *= 0.9
		}
	case turningPositive:
		action = models.ActionBuy
		reason = "MACD histogram turning positive"
		strength *= 0.7
	case turningNegative:
		action = models.ActionSell
		reason = "MACD histogram turning negative"
		strength *= 0.7
	case macd > sig && hist > histPrev:
		reason = "MACD bullish with increasing momentum"
		strength *= 0.4
	case macd < sig && hist < histPrev:
		reason = "MACD bearish with decreasing momentum"
		strength *= 0.4
	default:
		strength = 0
	}

	return models.IndicatorSignal{
		Indicator: NameMACD,
		Action:    action,
		Strength:  Round3(strength),
		Reason:    reason,
		Values: map[string]float64{
			"macd":      macd,
			"signal":    sig,
			"histogram": hist,
			"hist_pct":  histPct,
		},
	}
}
