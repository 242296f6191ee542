package risk

import (
	"errors"
	"fmt"
	"math"

	"TradeFlow/internal/domain/models"
)

var (
	// ErrInvalidWinRate is returned for win rates outside (0, 1).
	ErrInvalidWinRate = errors.New("win rate must be between 0 and 1")
	// ErrInvalidRatio is returned for a non-positive win/loss ratio.
	ErrInvalidRatio = errors.New("win/loss ratio must be positive")
	// ErrNoHistory is returned when estimating without any trades.
	ErrNoHistory = errors.New("no trading history provided")
)

// Kelly computes capital fractions with the Kelly criterion,
// f* = (p*b - q) / b, capped for safety.
type Kelly struct {
	DefaultWinRate  float64
	DefaultRatio    float64
	MaxFraction     float64
	FractionalKelly float64
}

// NewKelly uses half Kelly and a 25% cap by default.
func NewKelly() *Kelly {
	return &Kelly{
		DefaultWinRate:  0.5,
		DefaultRatio:    2.0,
		MaxFraction:     0.25,
		FractionalKelly: 0.5,
	}
}

// Calculate returns the full and safety-capped Kelly fractions. Zero
// arguments fall back to the defaults.
func (k *Kelly) Calculate(winRate, winLossRatio float64) (*models.KellyResult, error) {
	p := winRate
	if p == 0 {
		p = k.DefaultWinRate
	}
	b := winLossRatio
	if b == 0 {
		b = k.DefaultRatio
	}

	if p <= 0 || p >= 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidWinRate, p)
	}
	if b <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRatio, b)
	}

	q := 1 - p
	full := (p*b - q) / b

	var (
		safe           float64
		recommendation models.KellyRecommendation
		reason         string
	)
	switch {
	case full <= 0:
		recommendation = models.KellyNoTrade
		reason = "negative expected value, do not trade"
	case full > k.MaxFraction:
		recommendation = models.KellyMax
		safe = k.MaxFraction
		reason = fmt.Sprintf("full Kelly %.2f%% exceeds maximum, capped at %.2f%%", full*100, k.MaxFraction*100)
	default:
		recommendation = models.KellyFractional
		safe = full * k.FractionalKelly
		reason = fmt.Sprintf("using %.0f%% of Kelly for safety", k.FractionalKelly*100)
	}

	return &models.KellyResult{
		FullKelly:      round4(full),
		SafeKelly:      round4(safe),
		WinRate:        round3(p),
		WinLossRatio:   round2(b),
		Recommendation: recommendation,
		Reason:         reason,
	}, nil
}

// EstimateFromHistory derives win rate and win/loss ratio from closed
// trades and runs the Kelly calculation on them.
func (k *Kelly) EstimateFromHistory(trades []models.TradeOutcome) (*models.KellyEstimate, error) {
	if len(trades) == 0 {
		return nil, ErrNoHistory
	}

	var winSum, lossSum float64
	var wins, losses int
	for _, t := range trades {
		switch {
		case t.PnL > 0:
			wins++
			winSum += t.PnL
		case t.PnL < 0:
			losses++
			lossSum += -t.PnL
		}
	}

	winRate := float64(wins) / float64(len(trades))
	avgWin := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	avgLoss := 1.0
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	ratio := 0.0
	if avgLoss > 0 {
		ratio = avgWin / avgLoss
	}

	result, err := k.Calculate(winRate, ratio)
	if err != nil {
		return nil, err
	}

	return &models.KellyEstimate{
		KellyResult: *result,
		Trades:      len(trades),
		Wins:        wins,
		Losses:      losses,
		AvgWin:      round2(avgWin),
		AvgLoss:     round2(avgLoss),
	}, nil
}

// AdjustForConfidence scales a Kelly fraction by signal confidence,
// still capped at the maximum fraction.
func (k *Kelly) AdjustForConfidence(fraction, confidence float64) *models.KellyAdjustment {
	adjusted := math.Min(fraction*confidence, k.MaxFraction)
	return &models.KellyAdjustment{
		BaseKelly:     round4(fraction),
		Confidence:    round3(confidence),
		AdjustedKelly: round4(adjusted),
	}
}

// PositionSize converts a Kelly fraction into a capital amount.
func (k *Kelly) PositionSize(balance, fraction float64) float64 {
	if balance <= 0 || fraction <= 0 {
		return 0
	}
	return round2(balance * math.Min(fraction, k.MaxFraction))
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
