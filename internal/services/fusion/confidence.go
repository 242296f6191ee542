package fusion

import (
	"math"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/services/indicators"
)

// Weights for the four confidence factors. Normalized on construction.
type ConfidenceWeights struct {
	Agreement  float64
	Strength   float64
	Volatility float64
	Volume     float64
}

// DefaultConfidenceWeights mirror the standard factor split.
func DefaultConfidenceWeights() ConfidenceWeights {
	return ConfidenceWeights{Agreement: 0.35, Strength: 0.30, Volatility: 0.20, Volume: 0.15}
}

// ConfidenceResult is the scored quality of a fused decision.
type ConfidenceResult struct {
	Confidence float64
	Level      models.ConfidenceLevel
	Factors    models.ConfidenceFactors
	Weights    ConfidenceWeights
}

// Scorer turns a fused decision plus market context into a confidence
// score in [0, 1].
type Scorer struct {
	weights ConfidenceWeights
}

// NewScorer normalizes the weights so they sum to one.
func NewScorer(w ConfidenceWeights) *Scorer {
	total := w.Agreement + w.Strength + w.Volatility + w.Volume
	if total > 0 {
		w.Agreement /= total
		w.Strength /= total
		w.Volatility /= total
		w.Volume /= total
	}
	return &Scorer{weights: w}
}

// Score combines strength, agreement, volatility and volume factors
// into the final confidence.
func (sc *Scorer) Score(base float64, signals map[string]models.IndicatorSignal, s indicators.Series) *ConfidenceResult {
	factors := models.ConfidenceFactors{
		Strength:   clamp01(base),
		Agreement:  agreementFactor(signals),
		Volatility: 0.5,
		Volume:     0.5,
	}
	if len(s) > 0 {
		factors.Volatility = volatilityFactor(s, 20)
		factors.Volume = volumeFactor(s, 20)
	}

	confidence := factors.Strength*sc.weights.Strength +
		factors.Agreement*sc.weights.Agreement +
		factors.Volatility*sc.weights.Volatility +
		factors.Volume*sc.weights.Volume

	return &ConfidenceResult{
		Confidence: round3(confidence),
		Level:      ConfidenceLevel(confidence),
		Factors: models.ConfidenceFactors{
			Strength:   round3(factors.Strength),
			Agreement:  round3(factors.Agreement),
			Volatility: round3(factors.Volatility),
			Volume:     round3(factors.Volume),
		},
		Weights: sc.weights,
	}
}

// ConfidenceLevel maps a score onto its ordinal bucket.
func ConfidenceLevel(confidence float64) models.ConfidenceLevel {
	switch {
	case confidence >= 0.8:
		return models.ConfidenceVeryHigh
	case confidence >= 0.6:
		return models.ConfidenceHigh
	case confidence >= 0.4:
		return models.ConfidenceMedium
	case confidence >= 0.2:
		return models.ConfidenceLow
	default:
		return models.ConfidenceVeryLow
	}
}

// ShouldTrade reports whether the confidence clears the trading bar.
func ShouldTrade(confidence, minConfidence float64) bool {
	return confidence >= minConfidence
}

// agreementFactor is the share of indicators voting for the plurality
// action. Fewer than two indicators reads as neutral.
func agreementFactor(signals map[string]models.IndicatorSignal) float64 {
	if len(signals) < 2 {
		return 0.5
	}
	counts := map[models.Action]int{}
	for _, sig := range signals {
		counts[sig.Action]++
	}
	maxCount := 0
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}
	return float64(maxCount) / float64(len(signals))
}

// volatilityFactor inverts ATR as a percent of price: calm markets
// score higher. A 5% ATR or worse scores zero.
func volatilityFactor(s indicators.Series, period int) float64 {
	if len(s) < period {
		return 0.5
	}
	recent := s[len(s)-period:]
	tr := indicators.TrueRanges(recent)
	sum := 0.0
	for _, v := range tr {
		sum += v
	}
	atr := sum / float64(len(tr))

	price := s.Last().Close
	atrPct := atr / price * 100
	return clamp01(1.0 - atrPct/5.0)
}

// volumeFactor scores the last bar's volume against the recent average
// on a piecewise scale: 0.5x→0.3, 1x→0.5, 2x→0.8, 3x+→1.0.
func volumeFactor(s indicators.Series, period int) float64 {
	if len(s) < period {
		return 0.5
	}
	recent := s[len(s)-period:]
	sum := 0.0
	for _, c := range recent {
		sum += c.Volume
	}
	avg := sum / float64(len(recent))
	if avg == 0 {
		return 0.5
	}
	ratio := s.Last().Volume / avg

	switch {
	case ratio < 0.5:
		return 0.3
	case ratio < 1.0:
		return 0.3 + (ratio-0.5)*0.4
	case ratio < 2.0:
		return 0.5 + (ratio-1.0)*0.3
	default:
		return math.Min(0.8+(ratio-2.0)*0.2, 1.0)
	}
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }
