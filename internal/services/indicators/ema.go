package indicators

import (
	"math"

	"TradeFlow/internal/domain/models"
)

// EMA detects crossovers of a fast and slow exponential average, with a
// longer trend line as confirmation filter.
type EMA struct {
	Fast  int
	Slow  int
	Trend int
}

// NewEMA creates an EMA crossover indicator with 9/21/50 defaults.
func NewEMA(fast, slow, trend int) *EMA {
	if fast <= 0 {
		fast = 9
	}
	if slow <= 0 {
		slow = 21
	}
	if trend <= 0 {
		trend = 50
	}
	return &EMA{Fast: fast, Slow: slow, Trend: trend}
}

func (e *EMA) Name() string { return NameEMA }

func (e *EMA) Evaluate(s Series) models.IndicatorSignal {
	need := e.Fast
	if e.Slow > need {
		need = e.Slow
	}
	if e.Trend > need {
		need = e.Trend
	}
	if len(s) < need {
		return holdSignal(NameEMA, "insufficient data for EMA calculation")
	}

	closes := s.Closes()
	fast := EWM(closes, e.Fast)
	slow := EWM(closes, e.Slow)
	trend := EWM(closes, e.Trend)

	n := len(closes)
	fastNow, fastPrev := fast[n-1], fast[n-2]
	slowNow, slowPrev := slow[n-1], slow[n-2]
	trendNow := trend[n-1]
	price := closes[n-1]

	bullishCross := fastNow > slowNow && fastPrev <= slowPrev
	bearishCross := fastNow < slowNow && fastPrev >= slowPrev

	// 1% spread between the averages maps to full strength.
	diffPct := math.Abs(fastNow-slowNow) / price * 100
	strength := math.Min(diffPct, 1.0)

	aboveTrend := price > trendNow
	belowTrend := price < trendNow

	action := models.ActionHold
	reason := "no clear signal"

	switch {
	case bullishCross && aboveTrend:
		action = models.ActionBuy
		reason = "bullish EMA crossover with price above trend line"
		strength = math.Min(strength*1.2, 1.0)
	case bullishCross:
		action = models.ActionBuy
		reason = "bullish EMA crossover, price below trend line"
		strength *= 0.7
	case bearishCross && belowTrend:
		action = models.ActionSell
		reason = "bearish EMA crossover with price below trend line"
		strength = math.Min(strength*1.2, 1.0)
	case bearishCross:
		action = models.ActionSell
		reason = "bearish EMA crossover, price above trend line"
		strength *= 0.7
	case fastNow > slowNow && aboveTrend:
		reason = "bullish trend continues"
		strength *= 0.3
	case fastNow < slowNow && belowTrend:
		reason = "bearish trend continues"
		strength *= 0.3
	}

	return models.IndicatorSignal{
		Indicator: NameEMA,
		Action:    action,
		Strength:  Round3(strength),
		Reason:    reason,
		Values: map[string]float64{
			"fast_ema":  fastNow,
			"slow_ema":  slowNow,
			"trend_ema": trendNow,
			"diff_pct":  diffPct,
		},
	}
}
