package indicators

import (
	"fmt"
	"math"
	"sort"

	"TradeFlow/internal/domain/models"
)

// Level is a clustered price level with its touch count.
type Level struct {
	Price   float64
	Touches int
}

// SupportResistance detects horizontal levels from pivot highs and lows
// and signals bounces and breakouts around them.
type SupportResistance struct {
	Lookback     int
	PivotWindow  int
	NumLevels    int
	ProximityPct float64
	MinTouches   int
}

// NewSupportResistance creates an S/R indicator. ProximityPct is a
// fraction (0.015 means 1.5%).
func NewSupportResistance(lookback, pivotWindow int, proximityPct float64, minTouches int) *SupportResistance {
	if lookback <= 0 {
		lookback = 50
	}
	if pivotWindow <= 0 {
		pivotWindow = 5
	}
	if proximityPct <= 0 {
		proximityPct = 0.015
	}
	if minTouches <= 0 {
		minTouches = 2
	}
	return &SupportResistance{
		Lookback:     lookback,
		PivotWindow:  pivotWindow,
		NumLevels:    3,
		ProximityPct: proximityPct,
		MinTouches:   minTouches,
	}
}

func (sr *SupportResistance) Name() string { return NameSupportResistance }

// pivots returns the pivot high and low prices in the window. A bar is
// a pivot when it is the extreme of the centered window around it.
func (sr *SupportResistance) pivots(s Series) (highs, lows []float64) {
	w := sr.PivotWindow
	for i := w; i < len(s)-w; i++ {
		isHigh, isLow := true, true
		for j := i - w; j <= i+w; j++ {
			if s[j].High > s[i].High {
				isHigh = false
			}
			if s[j].Low < s[i].Low {
				isLow = false
			}
		}
		if isHigh {
			highs = append(highs, s[i].High)
		}
		if isLow {
			lows = append(lows, s[i].Low)
		}
	}
	return highs, lows
}

// cluster groups nearby prices, keeps clusters with enough touches,
// takes the strongest NumLevels and orders them by distance from the
// current price.
func (sr *SupportResistance) cluster(prices []float64, current float64) []Level {
	if len(prices) == 0 {
		return nil
	}
	sort.Float64s(prices)

	var clusters [][]float64
	cur := []float64{prices[0]}
	for _, p := range prices[1:] {
		avg := mean(cur)
		if math.Abs(p-avg)/avg < sr.ProximityPct {
			cur = append(cur, p)
		} else {
			clusters = append(clusters, cur)
			cur = []float64{p}
		}
	}
	clusters = append(clusters, cur)

	var levels []Level
	for _, c := range clusters {
		if len(c) >= sr.MinTouches {
			levels = append(levels, Level{Price: mean(c), Touches: len(c)})
		}
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].Touches > levels[j].Touches })
	if len(levels) > sr.NumLevels {
		levels = levels[:sr.NumLevels]
	}
	sort.Slice(levels, func(i, j int) bool {
		return math.Abs(levels[i].Price-current) < math.Abs(levels[j].Price-current)
	})
	return levels
}

// Levels returns the support and resistance levels around the current
// close, nearest first.
func (sr *SupportResistance) Levels(s Series) (supports, resistances []Level) {
	if len(s) < sr.Lookback {
		return nil, nil
	}
	recent := s[len(s)-sr.Lookback:]
	highs, lows := sr.pivots(recent)
	current := s.Last().Close

	var above, below []float64
	for _, h := range highs {
		if h > current {
			above = append(above, h)
		}
	}
	for _, l := range lows {
		if l < current {
			below = append(below, l)
		}
	}
	return sr.cluster(below, current), sr.cluster(above, current)
}

func (sr *SupportResistance) Evaluate(s Series) models.IndicatorSignal {
	if len(s) < sr.Lookback {
		return holdSignal(NameSupportResistance, "insufficient data for S/R calculation")
	}

	supports, resistances := sr.Levels(s)

	current := s.Last().Close
	prevClose := s[len(s)-2].Close
	curHigh := s.Last().High
	curLow := s.Last().Low

	action := models.ActionHold
	reason := "no clear S/R signal"
	strength := 0.0

	for _, lvl := range supports {
		if math.Abs(current-lvl.Price)/lvl.Price >= sr.ProximityPct/2 {
			continue
		}
		if curLow <= lvl.Price && current > lvl.Price {
			action = models.ActionBuy
			reason = fmt.Sprintf("bouncing off support at %.2f", lvl.Price)
			strength = math.Min(float64(lvl.Touches)/5.0, 1.0)
			break
		}
		if prevClose > lvl.Price && current < lvl.Price {
			action = models.ActionSell
			reason = fmt.Sprintf("broke below support at %.2f", lvl.Price)
			strength = math.Min(float64(lvl.Touches)/5.0*0.8, 1.0)
			break
		}
	}

	for _, lvl := range resistances {
		if math.Abs(current-lvl.Price)/lvl.Price >= sr.ProximityPct/2 {
			continue
		}
		if curHigh >= lvl.Price && current < lvl.Price {
			action = models.ActionSell
			reason = fmt.Sprintf("rejected at resistance at %.2f", lvl.Price)
			strength = math.Min(float64(lvl.Touches)/5.0, 1.0)
			break
		}
		if prevClose < lvl.Price && current > lvl.Price {
			action = models.ActionBuy
			reason = fmt.Sprintf("broke above resistance at %.2f", lvl.Price)
			strength = math.Min(float64(lvl.Touches)/5.0*0.8, 1.0)
			break
		}
	}

	values := map[string]float64{"current_price": current}
	if len(supports) > 0 {
		values["nearest_support"] = supports[0].Price
	}
	if len(resistances) > 0 {
		values["nearest_resistance"] = resistances[0].Price
	}

	return models.IndicatorSignal{
		Indicator: NameSupportResistance,
		Action:    action,
		Strength:  Round3(strength),
		Reason:    reason,
		Values:    values,
	}
}

func mean(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
