package risk

import (
	"errors"
	"math"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/services/indicators"
)

var (
	// ErrSupportRequired is returned when an S/R stop for a buy has no
	// support level to anchor to.
	ErrSupportRequired = errors.New("support level required for buy stop")
	// ErrResistanceRequired is the sell-side counterpart.
	ErrResistanceRequired = errors.New("resistance level required for sell stop")
)

// StopLossCalculator places protective stops and take-profit ladders.
type StopLossCalculator struct {
	ATRPeriod      int
	ATRMultiplier  float64
	DefaultStopPct float64
	RiskReward     float64
	MinRiskReward  float64
	SRBufferPct    float64
}

// NewStopLossCalculator uses a 2x ATR stop and a 1:2 risk-reward by
// default.
func NewStopLossCalculator() *StopLossCalculator {
	return &StopLossCalculator{
		ATRPeriod:      14,
		ATRMultiplier:  2.0,
		DefaultStopPct: 0.02,
		RiskReward:     2.0,
		MinRiskReward:  1.5,
		SRBufferPct:    0.005,
	}
}

// ATRStop places the stop one ATR-multiple away from entry, against the
// trade direction.
func (c *StopLossCalculator) ATRStop(entry, atr float64, action models.Action, multiplier float64) *models.StopLossResult {
	if multiplier == 0 {
		multiplier = c.ATRMultiplier
	}
	distance := atr * multiplier

	stop := entry + distance
	if action == models.ActionBuy {
		stop = entry - distance
	}

	return &models.StopLossResult{
		Method:        models.StopATR,
		StopPrice:     round2(stop),
		StopDistance:  round2(distance),
		StopPct:       round2(distance / entry * 100),
		ATR:           round2(atr),
		ATRMultiplier: multiplier,
	}
}

// FixedPctStop places the stop a fixed fraction of the entry price away.
func (c *StopLossCalculator) FixedPctStop(entry float64, action models.Action, pct float64) *models.StopLossResult {
	if pct == 0 {
		pct = c.DefaultStopPct
	}
	distance := entry * pct

	stop := entry + distance
	if action == models.ActionBuy {
		stop = entry - distance
	}

	return &models.StopLossResult{
		Method:       models.StopFixedPct,
		StopPrice:    round2(stop),
		StopDistance: round2(distance),
		StopPct:      round2(pct * 100),
	}
}

// SRStop places the stop just beyond the nearest support (buy) or
// resistance (sell) level.
func (c *StopLossCalculator) SRStop(entry float64, action models.Action, support, resistance float64) (*models.StopLossResult, error) {
	var ref, stop float64
	if action == models.ActionBuy {
		if support == 0 {
			return nil, ErrSupportRequired
		}
		ref = support
		stop = support - support*c.SRBufferPct
	} else {
		if resistance == 0 {
			return nil, ErrResistanceRequired
		}
		ref = resistance
		stop = resistance + resistance*c.SRBufferPct
	}

	distance := math.Abs(entry - stop)

	return &models.StopLossResult{
		Method:         models.StopSupportResistance,
		StopPrice:      round2(stop),
		StopDistance:   round2(distance),
		StopPct:        round2(distance / entry * 100),
		ReferenceLevel: ref,
		BufferPct:      round2(c.SRBufferPct * 100),
	}, nil
}

// TakeProfit lays out up to three targets from the risk distance and
// the risk-reward ratio. With multiple targets the reward grows
// linearly: target i of n sits at risk * rr * i/n.
func (c *StopLossCalculator) TakeProfit(entry, stop float64, action models.Action, rr float64, numTargets int) *models.TakeProfitResult {
	if rr == 0 {
		rr = c.RiskReward
	}
	rr = math.Max(rr, c.MinRiskReward)

	riskDist := math.Abs(entry - stop)
	reward := riskDist * rr

	if numTargets < 1 {
		numTargets = 1
	}
	if numTargets > 3 {
		numTargets = 3
	}

	var targets []models.TPTarget
	if numTargets == 1 {
		price := entry - reward
		if action == models.ActionBuy {
			price = entry + reward
		}
		targets = append(targets, models.TPTarget{
			Level:         1,
			Price:         round2(price),
			Distance:      round2(reward),
			DistancePct:   round2(reward / entry * 100),
			AllocationPct: 100,
		})
	} else {
		allocations := []float64{60, 40}
		if numTargets == 3 {
			allocations = []float64{50, 30, 20}
		}
		for i := 0; i < numTargets; i++ {
			partial := reward * float64(i+1) / float64(numTargets)
			price := entry - partial
			if action == models.ActionBuy {
				price = entry + partial
			}
			targets = append(targets, models.TPTarget{
				Level:         i + 1,
				Price:         round2(price),
				Distance:      round2(partial),
				DistancePct:   round2(partial / entry * 100),
				AllocationPct: allocations[i],
			})
		}
	}

	return &models.TakeProfitResult{
		RiskRewardRatio: rr,
		Risk:            round2(riskDist),
		TotalReward:     round2(reward),
		Targets:         targets,
	}
}

// CompleteLevels computes the stop by the requested method and the
// take-profit ladder from it.
func (c *StopLossCalculator) CompleteLevels(
	s indicators.Series,
	entry float64,
	action models.Action,
	method models.StopMethod,
	support, resistance float64,
	customStopPct, rr float64,
	numTargets int,
) (*models.TradeLevels, error) {
	var (
		stop *models.StopLossResult
		err  error
	)
	switch method {
	case models.StopFixedPct:
		stop = c.FixedPctStop(entry, action, customStopPct)
	case models.StopSupportResistance:
		stop, err = c.SRStop(entry, action, support, resistance)
		if err != nil {
			return nil, err
		}
	default:
		atr := indicators.ATR(s, c.ATRPeriod)
		stop = c.ATRStop(entry, atr, action, 0)
	}

	tp := c.TakeProfit(entry, stop.StopPrice, action, rr, numTargets)

	return &models.TradeLevels{
		EntryPrice: round2(entry),
		Action:     action,
		StopLoss:   *stop,
		TakeProfit: *tp,
		RiskPct:    stop.StopPct,
		RewardPct:  round2(tp.TotalReward / entry * 100),
	}, nil
}
