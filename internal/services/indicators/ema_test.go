package indicators

import (
	"testing"

	"TradeFlow/internal/domain/models"
)

func TestEMAInsufficientData(t *testing.T) {
	ema := NewEMA(9, 21, 50)
	sig := ema.Evaluate(seriesFromCloses([]float64{100, 101, 102}))
	if sig.Action != models.ActionHold {
		t.Fatalf("action = %v, want hold", sig.Action)
	}
	if sig.Strength != 0 {
		t.Fatalf("strength = %v, want 0", sig.Strength)
	}
}

func TestEMABullishCrossoverAboveTrend(t *testing.T) {
	ema := NewEMA(2, 3, 4)
	// a decline followed by a sharp recovery forces the fast average
	// back above the slow one on the last bar, with price above trend
	sig := ema.Evaluate(seriesFromCloses([]float64{100, 90, 80, 70, 100}))
	if sig.Action != models.ActionBuy {
		t.Fatalf("action = %v, want buy", sig.Action)
	}
	if sig.Strength != 1 {
		t.Fatalf("strength = %v, want 1 for a confirmed crossover", sig.Strength)
	}
	if sig.Values["fast_ema"] <= sig.Values["slow_ema"] {
		t.Fatalf("fast %v should be above slow %v", sig.Values["fast_ema"], sig.Values["slow_ema"])
	}
}

func TestEMABearishCrossoverBelowTrend(t *testing.T) {
	ema := NewEMA(2, 3, 4)
	sig := ema.Evaluate(seriesFromCloses([]float64{100, 110, 120, 130, 100}))
	if sig.Action != models.ActionSell {
		t.Fatalf("action = %v, want sell", sig.Action)
	}
	if sig.Strength != 1 {
		t.Fatalf("strength = %v, want 1 for a confirmed crossover", sig.Strength)
	}
}

func TestEMATrendContinuationHolds(t *testing.T) {
	ema := NewEMA(2, 3, 4)
	// steadily rising closes keep fast above slow with no fresh cross
	sig := ema.Evaluate(seriesFromCloses([]float64{100, 101, 102, 103, 104}))
	if sig.Action != models.ActionHold {
		t.Fatalf("action = %v, want hold without a crossover", sig.Action)
	}
	if sig.Strength <= 0 {
		t.Fatalf("continuation strength should be positive, got %v", sig.Strength)
	}
}

func TestEMADefaults(t *testing.T) {
	ema := NewEMA(0, 0, 0)
	if ema.Fast != 9 || ema.Slow != 21 || ema.Trend != 50 {
		t.Fatalf("unexpected defaults %d/%d/%d", ema.Fast, ema.Slow, ema.Trend)
	}
	if ema.Name() != NameEMA {
		t.Fatalf("name = %q", ema.Name())
	}
}
