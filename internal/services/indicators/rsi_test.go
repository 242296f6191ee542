package indicators

import (
	"testing"

	"TradeFlow/internal/domain/models"
)

func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func fallingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 200 - float64(i)
	}
	return out
}

func TestRSIInsufficientData(t *testing.T) {
	rsi := NewRSI(14, 30, 70)
	sig := rsi.Evaluate(seriesFromCloses([]float64{100, 101}))
	if sig.Action != models.ActionHold || sig.Strength != 0 {
		t.Fatalf("got %v/%v, want hold with zero strength", sig.Action, sig.Strength)
	}
}

func TestRSIComputeBounds(t *testing.T) {
	rsi := NewRSI(14, 30, 70)
	for _, closes := range [][]float64{risingCloses(30), fallingCloses(30)} {
		for i, v := range rsi.Compute(closes) {
			if v < 0 || v > 100 {
				t.Fatalf("rsi[%d] = %v out of [0, 100]", i, v)
			}
		}
	}
}

func TestRSIOverboughtSell(t *testing.T) {
	rsi := NewRSI(14, 30, 70)
	// a loss-free run pins RSI at 100, deep in the extreme zone
	sig := rsi.Evaluate(seriesFromCloses(risingCloses(20)))
	if sig.Action != models.ActionSell {
		t.Fatalf("action = %v, want sell", sig.Action)
	}
	if sig.Strength != 1 {
		t.Fatalf("strength = %v, want 1", sig.Strength)
	}
	if sig.Values["rsi"] != 100 {
		t.Fatalf("rsi = %v, want 100", sig.Values["rsi"])
	}
}

func TestRSIOversoldBuy(t *testing.T) {
	rsi := NewRSI(14, 30, 70)
	sig := rsi.Evaluate(seriesFromCloses(fallingCloses(20)))
	if sig.Action != models.ActionBuy {
		t.Fatalf("action = %v, want buy", sig.Action)
	}
	if sig.Strength != 1 {
		t.Fatalf("strength = %v, want 1", sig.Strength)
	}
}

func TestRSIFlatNeutral(t *testing.T) {
	rsi := NewRSI(14, 30, 70)
	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 100
	}
	sig := rsi.Evaluate(seriesFromCloses(flat))
	if sig.Action != models.ActionHold {
		t.Fatalf("action = %v, want hold", sig.Action)
	}
	if sig.Values["rsi"] != 50 {
		t.Fatalf("flat rsi = %v, want 50", sig.Values["rsi"])
	}
}

func TestRSICrossingUpFromOversold(t *testing.T) {
	rsi := NewRSI(2, 30, 70)
	// two hard down bars push RSI to zero, the recovery bar lifts it
	// back over the oversold line
	sig := rsi.Evaluate(seriesFromCloses([]float64{100, 90, 80, 85}))
	if sig.Action != models.ActionBuy {
		t.Fatalf("action = %v, want buy on the crossing", sig.Action)
	}
	if sig.Values["rsi_prev"] > 30 {
		t.Fatalf("previous rsi %v should be in the oversold zone", sig.Values["rsi_prev"])
	}
	if sig.Values["rsi"] <= 30 {
		t.Fatalf("current rsi %v should have crossed up", sig.Values["rsi"])
	}
}

func TestRSIDefaults(t *testing.T) {
	rsi := NewRSI(0, 0, 0)
	if rsi.Period != 14 || rsi.Oversold != 30 || rsi.Overbought != 70 {
		t.Fatalf("unexpected defaults %d/%v/%v", rsi.Period, rsi.Oversold, rsi.Overbought)
	}
}
