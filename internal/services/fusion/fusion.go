package fusion

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"TradeFlow/internal/domain/models"
)

// Deadband is the score threshold below which a weighted total reads as
// hold.
const Deadband = 0.1

// Fusion combines per-indicator signals into a single decision.
type Fusion struct {
	Method       models.FusionMethod
	Weights      map[string]float64
	MinAgreement float64
}

// New creates a fusion stage. Missing weights default to equal weight
// for the four standard indicators.
func New(method models.FusionMethod, weights map[string]float64, minAgreement float64) *Fusion {
	if weights == nil {
		weights = map[string]float64{
			"ema":                0.25,
			"rsi":                0.25,
			"macd":               0.25,
			"support_resistance": 0.25,
		}
	}
	if minAgreement == 0 {
		minAgreement = 0.6
	}
	return &Fusion{Method: method, Weights: weights, MinAgreement: minAgreement}
}

// Fuse combines the signals using the configured method. An empty
// signal set yields hold with confidence 0.
func (f *Fusion) Fuse(signals map[string]models.IndicatorSignal) *models.FusedDecision {
	if len(signals) == 0 {
		return &models.FusedDecision{
			Action:     models.ActionHold,
			Method:     f.Method,
			Reasoning:  "no signals available",
			Indicators: map[string]models.IndicatorSummary{},
		}
	}

	var d *models.FusedDecision
	switch f.Method {
	case models.FusionMajorityVote:
		d = f.majorityVote(signals)
	case models.FusionConservative:
		d = f.conservative(signals)
	case models.FusionAggressive:
		d = f.aggressive(signals)
	default:
		d = f.weightedAverage(signals)
	}

	d.Indicators = make(map[string]models.IndicatorSummary, len(signals))
	for name, sig := range signals {
		d.Indicators[name] = models.IndicatorSummary{
			Action:   sig.Action,
			Strength: sig.Strength,
			Reason:   sig.Reason,
		}
	}
	return d
}

func (f *Fusion) normalizedWeights() map[string]float64 {
	total := 0.0
	for _, w := range f.Weights {
		total += w
	}
	if total == 0 {
		return f.Weights
	}
	out := make(map[string]float64, len(f.Weights))
	for k, w := range f.Weights {
		out[k] = w / total
	}
	return out
}

func scoreToAction(score float64) models.Action {
	switch {
	case score > Deadband:
		return models.ActionBuy
	case score < -Deadband:
		return models.ActionSell
	default:
		return models.ActionHold
	}
}

func (f *Fusion) weightedAverage(signals map[string]models.IndicatorSignal) *models.FusedDecision {
	weights := f.normalizedWeights()

	totalScore := 0.0
	totalStrength := 0.0
	var reasons []string

	for _, name := range sortedNames(signals) {
		sig := signals[name]
		w := weights[name]
		totalScore += sig.Action.Score() * sig.Strength * w
		totalStrength += sig.Strength * w
		if sig.Strength > 0.3 {
			reasons = append(reasons, fmt.Sprintf("%s: %s", name, sig.Reason))
		}
	}

	avgStrength := totalStrength / float64(len(signals))

	reasoning := "no clear signals"
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, " | ")
	}

	return &models.FusedDecision{
		Action:     scoreToAction(totalScore),
		Confidence: round3(avgStrength),
		Score:      round3(totalScore),
		Method:     models.FusionWeightedAverage,
		Reasoning:  reasoning,
	}
}

func (f *Fusion) majorityVote(signals map[string]models.IndicatorSignal) *models.FusedDecision {
	votes := map[models.Action]int{models.ActionBuy: 0, models.ActionSell: 0, models.ActionHold: 0}
	weighted := map[models.Action]float64{}
	var reasons []string

	for _, name := range sortedNames(signals) {
		sig := signals[name]
		votes[sig.Action]++
		weighted[sig.Action] += sig.Strength
		if sig.Strength > 0.3 {
			reasons = append(reasons, fmt.Sprintf("%s: %s", name, sig.Reason))
		}
	}

	total := len(signals)
	winner := models.ActionHold
	maxVotes := -1
	for _, a := range []models.Action{models.ActionBuy, models.ActionSell, models.ActionHold} {
		if votes[a] > maxVotes {
			winner, maxVotes = a, votes[a]
		}
	}

	agreement := float64(maxVotes) / float64(total)
	if agreement < f.MinAgreement {
		winner = models.ActionHold
		reasons = []string{fmt.Sprintf("no consensus (agreement %.0f%%)", agreement*100)}
	}

	reasoning := "insufficient agreement"
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, " | ")
	}

	return &models.FusedDecision{
		Action:     winner,
		Confidence: round3(weighted[winner] / float64(total)),
		Agreement:  round3(agreement),
		Votes:      votes,
		Method:     models.FusionMajorityVote,
		Reasoning:  reasoning,
	}
}

func (f *Fusion) conservative(signals map[string]models.IndicatorSignal) *models.FusedDecision {
	first := models.Action("")
	unanimous := true
	totalStrength := 0.0
	var reasons []string

	for _, name := range sortedNames(signals) {
		sig := signals[name]
		if first == "" {
			first = sig.Action
		} else if sig.Action != first {
			unanimous = false
		}
		totalStrength += sig.Strength
		reasons = append(reasons, fmt.Sprintf("%s: %s", name, sig.Reason))
	}

	if !unanimous || first == models.ActionHold {
		return &models.FusedDecision{
			Action:    models.ActionHold,
			Method:    models.FusionConservative,
			Reasoning: "no full agreement among indicators",
		}
	}

	return &models.FusedDecision{
		Action:        first,
		Confidence:    round3(totalStrength / float64(len(signals))),
		FullAgreement: true,
		Method:        models.FusionConservative,
		Reasoning:     strings.Join(reasons, " | "),
	}
}

func (f *Fusion) aggressive(signals map[string]models.IndicatorSignal) *models.FusedDecision {
	best := ""
	for _, name := range sortedNames(signals) {
		if best == "" || signals[name].Strength > signals[best].Strength {
			best = name
		}
	}
	sig := signals[best]

	return &models.FusedDecision{
		Action:     sig.Action,
		Confidence: round3(sig.Strength),
		Source:     best,
		Method:     models.FusionAggressive,
		Reasoning:  fmt.Sprintf("strongest signal from %s: %s", best, sig.Reason),
	}
}

func sortedNames(signals map[string]models.IndicatorSignal) []string {
	names := make([]string, 0, len(signals))
	for name := range signals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
