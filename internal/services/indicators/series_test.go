package indicators

import (
	"math"
	"testing"

	"TradeFlow/internal/domain/models"
)

func seriesFromCloses(closes []float64) Series {
	s := make(Series, len(closes))
	for i, c := range closes {
		s[i] = models.Candle{
			Timestamp: int64(1700000000 + i*60),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1,
		}
	}
	return s
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEWM(t *testing.T) {
	// span 3 means alpha 0.5
	got := EWM([]float64{1, 2, 3}, 3)
	want := []float64{1, 1.5, 2.25}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Fatalf("ewm[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEWMEmpty(t *testing.T) {
	if got := EWM(nil, 10); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestTrueRanges(t *testing.T) {
	s := Series{
		{Timestamp: 1, High: 110, Low: 100, Close: 105},
		{Timestamp: 2, High: 112, Low: 108, Close: 110},
	}
	tr := TrueRanges(s)
	if !almostEqual(tr[0], 10) {
		t.Fatalf("first bar true range = %v, want 10", tr[0])
	}
	// second bar: max(112-108, |112-105|, |108-105|) = 7
	if !almostEqual(tr[1], 7) {
		t.Fatalf("second bar true range = %v, want 7", tr[1])
	}
}

func TestATR(t *testing.T) {
	s := make(Series, 5)
	for i := range s {
		s[i] = models.Candle{Timestamp: int64(i), High: 110, Low: 100, Close: 105}
	}
	// every bar's range is 10 and closes stay inside it
	if got := ATR(s, 3); !almostEqual(got, 10) {
		t.Fatalf("atr = %v, want 10", got)
	}
}

func TestATRShortSeriesFallback(t *testing.T) {
	s := Series{
		{Timestamp: 1, High: 110, Low: 100, Close: 105},
		{Timestamp: 2, High: 120, Low: 104, Close: 110},
	}
	// (120 - 100) / 2
	if got := ATR(s, 14); !almostEqual(got, 10) {
		t.Fatalf("fallback atr = %v, want 10", got)
	}
}

func TestATREmpty(t *testing.T) {
	if got := ATR(nil, 14); got != 0 {
		t.Fatalf("empty series atr = %v, want 0", got)
	}
}

func TestSeriesClosesAndLast(t *testing.T) {
	s := seriesFromCloses([]float64{1, 2, 3})
	closes := s.Closes()
	if len(closes) != 3 || closes[2] != 3 {
		t.Fatalf("unexpected closes %v", closes)
	}
	if s.Last().Close != 3 {
		t.Fatalf("last close = %v, want 3", s.Last().Close)
	}
}
