package risk

import (
	"math"
	"testing"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/services/indicators"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSizeRiskBased(t *testing.T) {
	s := NewPositionSizer(10000, 0.02)
	res := s.Size(50000, 400, 0)
	// 2% of 10000 at risk across a 2x ATR stop distance of 800
	if !almostEqual(res.RiskAmount, 200) {
		t.Fatalf("risk amount = %v, want 200", res.RiskAmount)
	}
	if !almostEqual(res.StopDistance, 800) {
		t.Fatalf("stop distance = %v, want 800", res.StopDistance)
	}
	if !almostEqual(res.PositionSize, 0.25) {
		t.Fatalf("position size = %v, want 0.25", res.PositionSize)
	}
	if !almostEqual(res.PositionValue, 12500) {
		t.Fatalf("position value = %v, want 12500", res.PositionValue)
	}
	if !almostEqual(res.StopDistancePct, 1.6) {
		t.Fatalf("stop distance pct = %v, want 1.6", res.StopDistancePct)
	}
}

func TestSizeCustomRisk(t *testing.T) {
	s := NewPositionSizer(10000, 0.02)
	res := s.Size(50000, 400, 0.01)
	if !almostEqual(res.PositionSize, 0.125) {
		t.Fatalf("position size = %v, want 0.125", res.PositionSize)
	}
	if !almostEqual(res.RiskPct, 1) {
		t.Fatalf("risk pct = %v, want 1", res.RiskPct)
	}
}

func TestSizeClampedToMax(t *testing.T) {
	s := NewPositionSizer(10000, 0.02)
	res := s.Size(50000, 0.01, 0)
	if !almostEqual(res.PositionSize, s.MaxSize) {
		t.Fatalf("position size = %v, want max %v", res.PositionSize, s.MaxSize)
	}
}

func TestSizeZeroATRUsesMin(t *testing.T) {
	s := NewPositionSizer(10000, 0.02)
	res := s.Size(50000, 0, 0)
	if !almostEqual(res.PositionSize, s.MinSize) {
		t.Fatalf("position size = %v, want min %v", res.PositionSize, s.MinSize)
	}
}

func TestSizeFromSeriesEmpty(t *testing.T) {
	s := NewPositionSizer(10000, 0.02)
	if res := s.SizeFromSeries(nil, 0); res != nil {
		t.Fatalf("expected nil for empty series, got %+v", res)
	}
}

func TestSizeFromSeries(t *testing.T) {
	s := NewPositionSizer(10000, 0.02)
	series := make(indicators.Series, 20)
	for i := range series {
		series[i] = models.Candle{Timestamp: int64(i), High: 50200, Low: 49800, Close: 50000}
	}
	res := s.SizeFromSeries(series, 0)
	if res == nil {
		t.Fatalf("expected a sizing result")
	}
	// ATR 400 on a 50000 close reproduces the risk-based size
	if !almostEqual(res.PositionSize, 0.25) {
		t.Fatalf("position size = %v, want 0.25", res.PositionSize)
	}
}

func TestAdjustForLeverageCapped(t *testing.T) {
	s := NewPositionSizer(10000, 0.02)
	res := s.AdjustForLeverage(0.2, 5, 3)
	if !almostEqual(res.Leverage, 3) {
		t.Fatalf("leverage = %v, want capped 3", res.Leverage)
	}
	if !almostEqual(res.LeveragedSize, 0.6) {
		t.Fatalf("leveraged size = %v, want 0.6", res.LeveragedSize)
	}
}

func TestSetBalanceIgnoresNonPositive(t *testing.T) {
	s := NewPositionSizer(10000, 0.02)
	s.SetBalance(0)
	if s.AccountBalance != 10000 {
		t.Fatalf("balance = %v, want unchanged 10000", s.AccountBalance)
	}
	s.SetBalance(25000)
	if s.AccountBalance != 25000 {
		t.Fatalf("balance = %v, want 25000", s.AccountBalance)
	}
}
