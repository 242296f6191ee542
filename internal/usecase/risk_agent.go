package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/domain/repository"
	"TradeFlow/internal/domain/service"
	"TradeFlow/internal/services/indicators"
	"TradeFlow/internal/services/risk"
	"TradeFlow/pkg/logger"
	"TradeFlow/pkg/metrics"
)

// RiskAgent turns an approved-to-trade signal into a sized, stop-protected
// trade decision, or rejects it. Hold signals and failed risk checks both
// come back as rejections rather than errors.
type RiskAgent struct {
	sizer   *risk.PositionSizer
	checker *risk.Checker
	stops   *risk.StopLossCalculator
	kelly   *risk.Kelly
	sr      *indicators.SupportResistance

	stopMethod     models.StopMethod
	stopPct        float64
	riskReward     float64
	numTargets     int
	kellyMinTrades int

	accounts service.AccountStateProvider
	history  repository.TradeHistory
	log      *logger.Logger
	metrics  *metrics.Recorder
}

// RiskAgentConfig carries the risk-stage knobs.
type RiskAgentConfig struct {
	Sizer   *risk.PositionSizer
	Checker *risk.Checker
	Stops   *risk.StopLossCalculator
	Kelly   *risk.Kelly
	SR      *indicators.SupportResistance

	StopMethod     models.StopMethod
	StopPct        float64
	RiskReward     float64
	NumTargets     int
	KellyMinTrades int
}

// NewRiskAgent wires the sizing, stop and limit-check services. Accounts and
// history are optional: without them the agent uses the configured balance and
// the Kelly defaults.
func NewRiskAgent(cfg RiskAgentConfig, accounts service.AccountStateProvider, history repository.TradeHistory, log *logger.Logger, rec *metrics.Recorder) *RiskAgent {
	if cfg.NumTargets <= 0 {
		cfg.NumTargets = 2
	}
	if cfg.KellyMinTrades <= 0 {
		cfg.KellyMinTrades = 20
	}
	return &RiskAgent{
		sizer:          cfg.Sizer,
		checker:        cfg.Checker,
		stops:          cfg.Stops,
		kelly:          cfg.Kelly,
		sr:             cfg.SR,
		stopMethod:     cfg.StopMethod,
		stopPct:        cfg.StopPct,
		riskReward:     cfg.RiskReward,
		numTargets:     cfg.NumTargets,
		kellyMinTrades: cfg.KellyMinTrades,
		accounts:       accounts,
		history:        history,
		log:            log,
		metrics:        rec,
	}
}

// Process evaluates the signal against account limits and produces the
// risk decision.
func (a *RiskAgent) Process(ctx context.Context, sig *models.SignalDecision, series indicators.Series, update *models.CandleUpdate) *models.RiskDecision {
	start := time.Now()
	defer func() {
		if a.metrics != nil {
			a.metrics.RecordStageLatency("risk", time.Since(start).Seconds())
		}
	}()

	if sig == nil || !sig.Action.Tradeable() || !sig.ShouldTrade {
		return a.rejection(sig, "signal is hold or below confidence threshold")
	}
	if len(series) == 0 {
		return a.rejection(sig, "no candle data for risk evaluation")
	}

	account := a.resolveAccount(ctx, update)
	if account.Balance > 0 {
		a.sizer.SetBalance(account.Balance)
	}

	price := series.Last().Close
	sizing := a.sizer.SizeFromSeries(series, 0)
	if sizing == nil {
		return a.rejection(sig, "position sizing failed")
	}

	var adjusted *models.KellyAdjustment
	size := sizing.PositionSize
	if a.kelly != nil {
		base := a.estimateKelly(ctx, sig.Pair)
		adjusted = a.kelly.AdjustForConfidence(base.SafeKelly, sig.Confidence)
		if a.kelly.FractionalKelly > 0 {
			size = round6(sizing.PositionSize * adjusted.AdjustedKelly / a.kelly.FractionalKelly)
		}
		if size < a.sizer.MinSize {
			size = a.sizer.MinSize
		}
		if size > a.sizer.MaxSize {
			size = a.sizer.MaxSize
		}
	}

	support, resistance := a.nearestLevels(series)
	levels, err := a.stops.CompleteLevels(series, price, sig.Action, a.stopMethod, support, resistance, a.stopPct, a.riskReward, a.numTargets)
	if err != nil {
		a.log.Warn("stop calculation failed, falling back to ATR stops",
			logger.String("pair", sig.Pair), logger.Error(err))
		levels, err = a.stops.CompleteLevels(series, price, sig.Action, models.StopATR, 0, 0, a.stopPct, a.riskReward, a.numTargets)
		if err != nil {
			return a.rejection(sig, fmt.Sprintf("stop calculation failed: %v", err))
		}
	}

	value := round2(size * price)
	validation := a.checker.ValidateTrade(size, value, account)

	decision := &models.RiskDecision{
		Approved:        validation.Approved,
		Pair:            sig.Pair,
		Action:          sig.Action,
		Confidence:      sig.Confidence,
		EntryPrice:      price,
		PositionSize:    size,
		PositionValue:   value,
		StopLoss:        levels.StopLoss.StopPrice,
		RiskAmount:      sizing.RiskAmount,
		RiskPct:         levels.StopLoss.StopPct,
		RiskRewardRatio: levels.TakeProfit.RiskRewardRatio,
		RiskScore:       validation.RiskScore,
		Sizing:          sizing,
		Kelly:           adjusted,
		Validation:      validation,
		Warnings:        validation.Warnings,
		Timestamp:       time.Now().UTC(),
	}
	if account.Balance > 0 {
		decision.PositionPct = round4(value / account.Balance)
	}
	if len(levels.TakeProfit.Targets) > 0 {
		decision.TakeProfit = levels.TakeProfit.Targets[0].Price
		decision.TakeProfits = levels.TakeProfit.Targets
	}
	if !validation.Approved {
		decision.Reason = failureReason(validation)
	}

	a.log.Info("risk decision",
		logger.String("pair", decision.Pair),
		logger.Bool("approved", decision.Approved),
		logger.Float64("size", decision.PositionSize),
		logger.Float64("risk_score", decision.RiskScore))

	if a.metrics != nil {
		outcome := "approved"
		if !decision.Approved {
			outcome = "rejected"
		}
		a.metrics.RecordDecision("risk", outcome)
	}

	return decision
}

// resolveAccount prefers trigger-supplied overrides, then the live account
// provider, then the configured static balance.
func (a *RiskAgent) resolveAccount(ctx context.Context, update *models.CandleUpdate) *models.AccountState {
	account := &models.AccountState{Balance: a.sizer.AccountBalance}
	if a.accounts != nil {
		if live, err := a.accounts.AccountState(ctx); err != nil {
			a.log.Warn("account state unavailable, using configured balance", logger.Error(err))
		} else if live != nil {
			account = live
		}
	}
	if update != nil {
		if update.OpenTrades != nil {
			account.OpenTrades = *update.OpenTrades
		}
		if update.DailyPnL != nil {
			account.DailyPnL = *update.DailyPnL
		}
		if update.CurrentExposure != nil {
			account.CurrentExposure = *update.CurrentExposure
		}
	}
	return account
}

// estimateKelly uses recorded trade history when enough closed trades
// exist, otherwise the configured defaults.
func (a *RiskAgent) estimateKelly(ctx context.Context, pair string) *models.KellyResult {
	if a.history != nil {
		if outcomes, err := a.history.Recent(ctx, pair, a.kellyMinTrades*4); err == nil && len(outcomes) >= a.kellyMinTrades {
			if est, err := a.kelly.EstimateFromHistory(outcomes); err == nil {
				return &est.KellyResult
			}
		}
	}
	res, err := a.kelly.Calculate(0, 0)
	if err != nil {
		return &models.KellyResult{Recommendation: models.KellyNoTrade}
	}
	return res
}

// nearestLevels picks the closest support below and resistance above the
// current price from the pivot clusters.
func (a *RiskAgent) nearestLevels(series indicators.Series) (float64, float64) {
	if a.sr == nil {
		return 0, 0
	}
	supports, resistances := a.sr.Levels(series)
	var support, resistance float64
	if len(supports) > 0 {
		support = supports[0].Price
	}
	if len(resistances) > 0 {
		resistance = resistances[0].Price
	}
	return support, resistance
}

// failureReason joins the warnings of every failed check.
func failureReason(v *models.RiskValidation) string {
	var parts []string
	for _, check := range v.Checks {
		if !check.Approved {
			parts = append(parts, check.Warnings...)
		}
	}
	if len(parts) == 0 {
		return "risk checks failed"
	}
	return strings.Join(parts, "; ")
}

// rejection is the uniform shape for signals that never reach execution.
func (a *RiskAgent) rejection(sig *models.SignalDecision, reason string) *models.RiskDecision {
	d := &models.RiskDecision{
		Approved:  false,
		Action:    models.ActionHold,
		Reason:    reason,
		RiskScore: 1.0,
		Timestamp: time.Now().UTC(),
	}
	if sig != nil {
		d.Pair = sig.Pair
		d.Confidence = sig.Confidence
	}
	if a.metrics != nil {
		a.metrics.RecordDecision("risk", "rejected")
	}
	return d
}
