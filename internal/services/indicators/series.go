package indicators

import (
	"math"

	"TradeFlow/internal/domain/models"
)

// Series is a chronologically ordered candle window, oldest first.
type Series []models.Candle

// Closes extracts the close prices.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Last returns the most recent candle. Callers must check length first.
func (s Series) Last() models.Candle { return s[len(s)-1] }

// EWM computes an exponential moving average over values with the given
// span, alpha = 2/(span+1), seeded with the first value.
func EWM(values []float64, span int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// TrueRanges computes the per-bar true range. The first bar's true range
// is its high-low span since there is no prior close.
func TrueRanges(s Series) []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		tr := c.High - c.Low
		if i > 0 {
			prev := s[i-1].Close
			tr = math.Max(tr, math.Max(math.Abs(c.High-prev), math.Abs(c.Low-prev)))
		}
		out[i] = tr
	}
	return out
}

// ATR is the simple moving average of the true range over the last
// period bars. With fewer bars than period it falls back to the full
// range spread divided by the bar count.
func ATR(s Series, period int) float64 {
	if len(s) == 0 {
		return 0
	}
	if len(s) < period {
		hi, lo := s[0].High, s[0].Low
		for _, c := range s[1:] {
			hi = math.Max(hi, c.High)
			lo = math.Min(lo, c.Low)
		}
		return (hi - lo) / float64(len(s))
	}
	tr := TrueRanges(s)
	sum := 0.0
	for _, v := range tr[len(tr)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// Round3 rounds to three decimals, the precision indicator strengths
// are reported at.
func Round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }
