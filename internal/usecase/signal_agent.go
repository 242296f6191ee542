package usecase

import (
	"context"
	"time"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/services/fusion"
	"TradeFlow/internal/services/indicators"
	"TradeFlow/pkg/logger"
	"TradeFlow/pkg/metrics"
)

// SignalAgent runs the enabled indicators over a candle window, fuses
// their votes and scores the result. It never returns an error: any
// degenerate input degrades to a hold decision with zero confidence.
type SignalAgent struct {
	indicators    []indicators.Indicator
	fusion        *fusion.Fusion
	scorer        *fusion.Scorer
	minConfidence float64
	log           *logger.Logger
	metrics       *metrics.Recorder
}

// SignalAgentConfig selects indicators and thresholds.
type SignalAgentConfig struct {
	Indicators    []indicators.Indicator
	FusionMethod  models.FusionMethod
	Weights       map[string]float64
	MinAgreement  float64
	MinConfidence float64
}

// NewSignalAgent wires the fusion stage and confidence scorer.
func NewSignalAgent(cfg SignalAgentConfig, log *logger.Logger, rec *metrics.Recorder) *SignalAgent {
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = 0.5
	}
	return &SignalAgent{
		indicators:    cfg.Indicators,
		fusion:        fusion.New(cfg.FusionMethod, cfg.Weights, cfg.MinAgreement),
		scorer:        fusion.NewScorer(fusion.DefaultConfidenceWeights()),
		minConfidence: cfg.MinConfidence,
		log:           log,
		metrics:       rec,
	}
}

// Process evaluates every indicator on the series and produces the
// signal decision for the pair.
func (a *SignalAgent) Process(ctx context.Context, update *models.CandleUpdate, series indicators.Series) *models.SignalDecision {
	start := time.Now()
	defer func() {
		if a.metrics != nil {
			a.metrics.RecordStageLatency("signal", time.Since(start).Seconds())
		}
	}()

	if update == nil || update.Pair == "" {
		return a.holdDecision(update, "missing pair in candle update")
	}
	if len(series) == 0 {
		return a.holdDecision(update, "no candle data available")
	}

	signals := make(map[string]models.IndicatorSignal, len(a.indicators))
	for _, ind := range a.indicators {
		signals[ind.Name()] = ind.Evaluate(series)
	}

	fused := a.fusion.Fuse(signals)
	conf := a.scorer.Score(fused.Confidence, signals, series)

	decision := &models.SignalDecision{
		Pair:        update.Pair,
		Timeframe:   update.Timeframe,
		Action:      fused.Action,
		Confidence:  conf.Confidence,
		Level:       conf.Level,
		ShouldTrade: fusion.ShouldTrade(conf.Confidence, a.minConfidence),
		Method:      a.fusion.Method,
		Factors:     conf.Factors,
		Indicators:  fused.Indicators,
		Reasoning:   fused.Reasoning,
		Price:       series.Last().Close,
		Timestamp:   time.Now().UTC(),
	}

	a.log.Info("signal generated",
		logger.String("pair", decision.Pair),
		logger.String("action", string(decision.Action)),
		logger.Float64("confidence", decision.Confidence),
		logger.Bool("should_trade", decision.ShouldTrade))

	if a.metrics != nil {
		a.metrics.RecordSignal(decision.Pair, string(decision.Action))
		a.metrics.RecordConfidence(decision.Pair, decision.Confidence)
		a.metrics.RecordLastPrice(decision.Pair, decision.Price)
	}

	return decision
}

// holdDecision is the conservative fallback for unusable input.
func (a *SignalAgent) holdDecision(update *models.CandleUpdate, reason string) *models.SignalDecision {
	d := &models.SignalDecision{
		Action:     models.ActionHold,
		Level:      models.ConfidenceVeryLow,
		Method:     a.fusion.Method,
		Factors:    models.ConfidenceFactors{Volatility: 0.5, Volume: 0.5},
		Indicators: map[string]models.IndicatorSummary{},
		Reasoning:  reason,
		Timestamp:  time.Now().UTC(),
	}
	if update != nil {
		d.Pair = update.Pair
		d.Timeframe = update.Timeframe
	}
	return d
}
