package risk

import (
	"errors"
	"testing"

	"TradeFlow/internal/domain/models"
)

func TestKellyCapped(t *testing.T) {
	k := NewKelly()
	res, err := k.Calculate(0.6, 2.0)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	// (0.6*2 - 0.4) / 2 = 0.4, over the 25% cap
	if !almostEqual(res.FullKelly, 0.4) {
		t.Fatalf("full kelly = %v, want 0.4", res.FullKelly)
	}
	if !almostEqual(res.SafeKelly, 0.25) {
		t.Fatalf("safe kelly = %v, want 0.25", res.SafeKelly)
	}
	if res.Recommendation != models.KellyMax {
		t.Fatalf("recommendation = %v, want max_kelly", res.Recommendation)
	}
}

func TestKellyFractional(t *testing.T) {
	k := NewKelly()
	res, err := k.Calculate(0.5, 1.5)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !almostEqual(res.FullKelly, 0.1667) {
		t.Fatalf("full kelly = %v, want 0.1667", res.FullKelly)
	}
	if !almostEqual(res.SafeKelly, 0.0833) {
		t.Fatalf("safe kelly = %v, want half kelly 0.0833", res.SafeKelly)
	}
	if res.Recommendation != models.KellyFractional {
		t.Fatalf("recommendation = %v, want fractional_kelly", res.Recommendation)
	}
}

func TestKellyNegativeEdge(t *testing.T) {
	k := NewKelly()
	res, err := k.Calculate(0.3, 1.0)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Recommendation != models.KellyNoTrade {
		t.Fatalf("recommendation = %v, want no_trade", res.Recommendation)
	}
	if res.SafeKelly != 0 {
		t.Fatalf("safe kelly = %v, want 0", res.SafeKelly)
	}
}

func TestKellyZeroArgsUseDefaults(t *testing.T) {
	k := NewKelly()
	res, err := k.Calculate(0, 0)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	// defaults 0.5 / 2.0 give exactly the cap as full kelly
	if !almostEqual(res.FullKelly, 0.25) {
		t.Fatalf("full kelly = %v, want 0.25", res.FullKelly)
	}
	if !almostEqual(res.SafeKelly, 0.125) {
		t.Fatalf("safe kelly = %v, want 0.125", res.SafeKelly)
	}
}

func TestKellyInvalidInputs(t *testing.T) {
	k := NewKelly()
	if _, err := k.Calculate(1.2, 2); !errors.Is(err, ErrInvalidWinRate) {
		t.Fatalf("expected ErrInvalidWinRate, got %v", err)
	}
	if _, err := k.Calculate(0.5, -1); !errors.Is(err, ErrInvalidRatio) {
		t.Fatalf("expected ErrInvalidRatio, got %v", err)
	}
}

func TestEstimateFromHistory(t *testing.T) {
	k := NewKelly()
	var trades []models.TradeOutcome
	for i := 0; i < 6; i++ {
		trades = append(trades, models.TradeOutcome{PnL: 2})
	}
	for i := 0; i < 4; i++ {
		trades = append(trades, models.TradeOutcome{PnL: -1})
	}
	est, err := k.EstimateFromHistory(trades)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if est.Wins != 6 || est.Losses != 4 || est.Trades != 10 {
		t.Fatalf("unexpected tallies %d/%d/%d", est.Wins, est.Losses, est.Trades)
	}
	if !almostEqual(est.WinRate, 0.6) || !almostEqual(est.WinLossRatio, 2) {
		t.Fatalf("win rate %v ratio %v, want 0.6 and 2", est.WinRate, est.WinLossRatio)
	}
	if !almostEqual(est.SafeKelly, 0.25) {
		t.Fatalf("safe kelly = %v, want capped 0.25", est.SafeKelly)
	}
}

func TestEstimateFromHistoryEmpty(t *testing.T) {
	k := NewKelly()
	if _, err := k.EstimateFromHistory(nil); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
}

func TestAdjustForConfidence(t *testing.T) {
	k := NewKelly()
	adj := k.AdjustForConfidence(0.2, 0.5)
	if !almostEqual(adj.AdjustedKelly, 0.1) {
		t.Fatalf("adjusted = %v, want 0.1", adj.AdjustedKelly)
	}
	capped := k.AdjustForConfidence(0.25, 2.0)
	if !almostEqual(capped.AdjustedKelly, 0.25) {
		t.Fatalf("adjusted = %v, want capped 0.25", capped.AdjustedKelly)
	}
}

func TestKellyPositionSize(t *testing.T) {
	k := NewKelly()
	if got := k.PositionSize(10000, 0.1); !almostEqual(got, 1000) {
		t.Fatalf("size = %v, want 1000", got)
	}
	// fractions over the cap spend at most the cap
	if got := k.PositionSize(10000, 0.5); !almostEqual(got, 2500) {
		t.Fatalf("size = %v, want 2500", got)
	}
	if got := k.PositionSize(0, 0.1); got != 0 {
		t.Fatalf("size = %v, want 0 without balance", got)
	}
}
