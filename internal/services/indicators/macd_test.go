package indicators

import (
	"testing"

	"TradeFlow/internal/domain/models"
)

func TestMACDInsufficientData(t *testing.T) {
	macd := NewMACD(12, 26, 9)
	sig := macd.Evaluate(seriesFromCloses(risingCloses(30)))
	if sig.Action != models.ActionHold || sig.Strength != 0 {
		t.Fatalf("got %v/%v, want hold with zero strength", sig.Action, sig.Strength)
	}
}

func TestMACDBullishCrossoverAboveZero(t *testing.T) {
	macd := NewMACD(2, 4, 3)
	// a steady decline then a strong recovery bar flips the MACD line
	// over its signal line on the final bar
	sig := macd.Evaluate(seriesFromCloses([]float64{100, 98, 96, 94, 92, 90, 100}))
	if sig.Action != models.ActionBuy {
		t.Fatalf("action = %v, want buy", sig.Action)
	}
	if sig.Strength != 1 {
		t.Fatalf("strength = %v, want 1", sig.Strength)
	}
	if sig.Values["macd"] <= sig.Values["signal"] {
		t.Fatalf("macd %v should be above signal %v", sig.Values["macd"], sig.Values["signal"])
	}
	if sig.Values["macd"] <= 0 {
		t.Fatalf("macd %v should be above the zero line", sig.Values["macd"])
	}
}

func TestMACDBearishCrossoverBelowZero(t *testing.T) {
	macd := NewMACD(2, 4, 3)
	sig := macd.Evaluate(seriesFromCloses([]float64{100, 102, 104, 106, 108, 110, 100}))
	if sig.Action != models.ActionSell {
		t.Fatalf("action = %v, want sell", sig.Action)
	}
	if sig.Strength != 1 {
		t.Fatalf("strength = %v, want 1", sig.Strength)
	}
	if sig.Values["macd"] >= 0 {
		t.Fatalf("macd %v should be below the zero line", sig.Values["macd"])
	}
}

func TestMACDDefaults(t *testing.T) {
	macd := NewMACD(0, 0, 0)
	if macd.Fast != 12 || macd.Slow != 26 || macd.Signal != 9 {
		t.Fatalf("unexpected defaults %d/%d/%d", macd.Fast, macd.Slow, macd.Signal)
	}
	if macd.Name() != NameMACD {
		t.Fatalf("name = %q", macd.Name())
	}
}
