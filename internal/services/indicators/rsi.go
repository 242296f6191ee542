package indicators

import (
	"fmt"
	"math"

	"TradeFlow/internal/domain/models"
)

// RSI flags overbought and oversold conditions. Gains and losses are
// smoothed with span-based exponential averages.
type RSI struct {
	Period      int
	Overbought  float64
	Oversold    float64
	ExtremeHigh float64
	ExtremeLow  float64
}

// NewRSI creates an RSI indicator with the usual 14/70/30 thresholds.
func NewRSI(period int, oversold, overbought float64) *RSI {
	if period <= 0 {
		period = 14
	}
	if oversold == 0 {
		oversold = 30
	}
	if overbought == 0 {
		overbought = 70
	}
	return &RSI{
		Period:      period,
		Overbought:  overbought,
		Oversold:    oversold,
		ExtremeHigh: 80,
		ExtremeLow:  20,
	}
}

func (r *RSI) Name() string { return NameRSI }

// Compute returns the RSI series for the given closes. Values are in
// [0, 100]; a run without losses yields 100, without gains 0.
func (r *RSI) Compute(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}
	avgGain := EWM(gains, r.Period)
	avgLoss := EWM(losses, r.Period)

	out := make([]float64, len(closes))
	for i := range closes {
		switch {
		case avgLoss[i] == 0 && avgGain[i] == 0:
			out[i] = 50
		case avgLoss[i] == 0:
			out[i] = 100
		default:
			rs := avgGain[i] / avgLoss[i]
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

func (r *RSI) Evaluate(s Series) models.IndicatorSignal {
	if len(s) < r.Period+1 {
		return holdSignal(NameRSI, "insufficient data for RSI calculation")
	}

	series := r.Compute(s.Closes())
	rsi := series[len(series)-1]
	prev := series[len(series)-2]

	action := models.ActionHold
	reason := fmt.Sprintf("RSI neutral (%.1f)", rsi)
	strength := 0.0

	switch {
	case rsi < r.ExtremeLow:
		action = models.ActionBuy
		reason = fmt.Sprintf("RSI extremely oversold (%.1f)", rsi)
		strength = math.Min((r.Oversold-rsi)/r.Oversold, 1.0)
	case rsi < r.Oversold:
		action = models.ActionBuy
		reason = fmt.Sprintf("RSI oversold (%.1f)", rsi)
		strength = (r.Oversold - rsi) / (r.Oversold - r.ExtremeLow)
	case rsi > r.ExtremeHigh:
		action = models.ActionSell
		reason = fmt.Sprintf("RSI extremely overbought (%.1f)", rsi)
		strength = math.Min((rsi-r.Overbought)/(100-r.Overbought), 1.0)
	case rsi > r.Overbought:
		action = models.ActionSell
		reason = fmt.Sprintf("RSI overbought (%.1f)", rsi)
		strength = (rsi - r.Overbought) / (r.ExtremeHigh - r.Overbought)
	case rsi > 55:
		reason = fmt.Sprintf("RSI slightly bullish (%.1f)", rsi)
		strength = (rsi - 50) / 20 * 0.3
	case rsi < 45:
		reason = fmt.Sprintf("RSI slightly bearish (%.1f)", rsi)
		strength = (50 - rsi) / 20 * 0.3
	}

	// A threshold crossing is a stronger entry cue than the zone itself.
	crossingUp := rsi > r.Oversold && prev <= r.Oversold
	crossingDown := rsi < r.Overbought && prev >= r.Overbought
	if crossingUp {
		action = models.ActionBuy
		reason = fmt.Sprintf("RSI crossing up from oversold (%.1f)", rsi)
		strength = math.Min(strength*1.3, 1.0)
	} else if crossingDown {
		action = models.ActionSell
		reason = fmt.Sprintf("RSI crossing down from overbought (%.1f)", rsi)
		strength = math.Min(strength*1.3, 1.0)
	}

	return models.IndicatorSignal{
		Indicator: NameRSI,
		Action:    action,
		Strength:  Round3(strength),
		Reason:    reason,
		Values: map[string]float64{
			"rsi":      rsi,
			"rsi_prev": prev,
		},
	}
}
