package risk

import (
	"math"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/services/indicators"
)

// PositionSizer sizes trades so the distance to the stop risks a fixed
// share of the account.
type PositionSizer struct {
	AccountBalance float64
	RiskPerTrade   float64
	ATRPeriod      int
	ATRMultiplier  float64
	MinSize        float64
	MaxSize        float64
}

// NewPositionSizer creates a sizer with 2% risk and a 2x ATR stop by
// default.
func NewPositionSizer(balance, riskPerTrade float64) *PositionSizer {
	if riskPerTrade == 0 {
		riskPerTrade = 0.02
	}
	return &PositionSizer{
		AccountBalance: balance,
		RiskPerTrade:   riskPerTrade,
		ATRPeriod:      14,
		ATRMultiplier:  2.0,
		MinSize:        0.001,
		MaxSize:        1.0,
	}
}

// Size computes position size = risk amount / stop distance, clamped to
// the configured bounds. A custom risk of 0 uses the default.
func (p *PositionSizer) Size(currentPrice, atr, customRisk float64) *models.SizingResult {
	riskPct := p.RiskPerTrade
	if customRisk > 0 {
		riskPct = customRisk
	}

	riskAmount := p.AccountBalance * riskPct
	stopDistance := atr * p.ATRMultiplier

	size := p.MinSize
	if stopDistance > 0 {
		size = riskAmount / stopDistance
	}
	size = math.Max(p.MinSize, math.Min(size, p.MaxSize))

	value := size * currentPrice

	return &models.SizingResult{
		PositionSize:    round6(size),
		PositionValue:   round2(value),
		PositionPct:     round2(value / p.AccountBalance * 100),
		RiskAmount:      round2(riskAmount),
		RiskPct:         round2(riskPct * 100),
		StopDistance:    round2(stopDistance),
		StopDistancePct: round2(stopDistance / currentPrice * 100),
		ATR:             round2(atr),
		ATRMultiplier:   p.ATRMultiplier,
	}
}

// SizeFromSeries derives the ATR from the candle window and sizes off
// the latest close.
func (p *PositionSizer) SizeFromSeries(s indicators.Series, customRisk float64) *models.SizingResult {
	if len(s) == 0 {
		return nil
	}
	atr := indicators.ATR(s, p.ATRPeriod)
	return p.Size(s.Last().Close, atr, customRisk)
}

// AdjustForLeverage scales a base size by leverage, capped at both the
// maximum leverage and the maximum position size.
func (p *PositionSizer) AdjustForLeverage(size, leverage, maxLeverage float64) *models.LeverageResult {
	if maxLeverage == 0 {
		maxLeverage = 3.0
	}
	effective := math.Min(leverage, maxLeverage)
	leveraged := math.Min(size*effective, p.MaxSize)

	return &models.LeverageResult{
		BaseSize:      round6(size),
		Leverage:      effective,
		LeveragedSize: round6(leveraged),
		MaxLeverage:   maxLeverage,
	}
}

// SetBalance replaces the account balance used for sizing.
func (p *PositionSizer) SetBalance(balance float64) {
	if balance > 0 {
		p.AccountBalance = balance
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
