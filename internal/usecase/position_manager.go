package usecase

import (
	"context"
	"time"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/services/position"
	"TradeFlow/pkg/logger"
	"TradeFlow/pkg/metrics"
)

// PositionManager executes approved risk decisions and monitors the
// resulting positions: take-profit ladders, trailing stops and stop
// hits all flow through here.
type PositionManager struct {
	executor       *position.OrderExecutor
	takeProfits    *position.TakeProfitManager
	trailing       *position.TrailingStopManager
	enableTrailing bool
	log            *logger.Logger
	metrics        *metrics.Recorder
}

// NewPositionManager wires the execution and monitoring services.
func NewPositionManager(executor *position.OrderExecutor, tp *position.TakeProfitManager, trailing *position.TrailingStopManager, enableTrailing bool, log *logger.Logger, rec *metrics.Recorder) *PositionManager {
	return &PositionManager{
		executor:       executor,
		takeProfits:    tp,
		trailing:       trailing,
		enableTrailing: enableTrailing,
		log:            log,
		metrics:        rec,
	}
}

// Process executes the decision as a market order and, on success, sets
// up the take-profit ladder and trailing stop for the new position.
func (m *PositionManager) Process(ctx context.Context, decision *models.RiskDecision) (*models.PositionResult, error) {
	start := time.Now()
	defer func() {
		if m.metrics != nil {
			m.metrics.RecordStageLatency("position", time.Since(start).Seconds())
		}
	}()

	result := &models.PositionResult{
		Timestamp: time.Now().UTC(),
	}
	if decision != nil {
		result.Pair = decision.Pair
		result.Action = decision.Action
		result.PositionSize = decision.PositionSize
		result.EntryPrice = decision.EntryPrice
	}

	if decision == nil || !decision.Approved {
		result.Status = models.ExecRejected
		result.Reason = "trade not approved by risk checks"
		if decision != nil && decision.Reason != "" {
			result.Reason = decision.Reason
		}
		if m.metrics != nil {
			m.metrics.RecordDecision("position", "rejected")
		}
		return result, nil
	}

	exec, err := m.executor.ExecuteMarket(ctx, decision.Pair, decision.Action, decision.PositionSize, decision.StopLoss, decision.TakeProfit)
	if err != nil {
		return nil, err
	}
	result.Execution = exec
	result.Status = exec.Status
	if exec.Status != models.ExecExecuted {
		result.Reason = exec.Reason
		if m.metrics != nil {
			m.metrics.RecordOrder(string(exec.Status))
			m.metrics.RecordDecision("position", string(exec.Status))
		}
		return result, nil
	}

	result.Success = true
	if len(decision.TakeProfits) > 0 {
		setup, err := m.takeProfits.Setup(decision.Pair, decision.Action, decision.PositionSize, decision.TakeProfits)
		if err != nil {
			m.log.Warn("take-profit setup rejected",
				logger.String("pair", decision.Pair), logger.Error(err))
		} else {
			result.TakeProfit = setup
		}
	}
	if m.enableTrailing && decision.StopLoss > 0 {
		result.Trailing = m.trailing.Setup(decision.Pair, decision.EntryPrice, decision.Action, decision.StopLoss)
	}

	m.log.Info("position opened",
		logger.String("pair", decision.Pair),
		logger.String("side", string(decision.Action)),
		logger.Float64("size", decision.PositionSize),
		logger.Float64("entry", decision.EntryPrice))

	if m.metrics != nil {
		m.metrics.RecordOrder(string(models.ExecExecuted))
		m.metrics.RecordDecision("position", "executed")
	}

	return result, nil
}

// UpdatePosition advances the trailing stop and take-profit ladder for
// an open position on a new price.
func (m *PositionManager) UpdatePosition(pair string, currentPrice float64) *models.PositionUpdate {
	update := &models.PositionUpdate{
		Pair:         pair,
		CurrentPrice: currentPrice,
		Timestamp:    time.Now().UTC(),
	}

	if hits := m.takeProfits.CheckHits(pair, currentPrice); len(hits) > 0 {
		update.Actions = append(update.Actions, models.PositionAction{
			Type:    models.PositionTakeProfitHit,
			Targets: hits,
		})
	}

	if m.trailing.Tracked(pair) {
		if moved := m.trailing.Update(pair, currentPrice); moved != nil {
			update.Actions = append(update.Actions, models.PositionAction{
				Type:      models.PositionTrailingUpdated,
				StopPrice: moved.NewStop,
				Trailing:  moved,
			})
		}
		if m.trailing.StopHit(pair, currentPrice) {
			stop, _ := m.trailing.CurrentStop(pair)
			update.Actions = append(update.Actions, models.PositionAction{
				Type:      models.PositionStopHit,
				StopPrice: stop,
			})
		}
	}

	return update
}

// Status reports the open position's monitoring state.
func (m *PositionManager) Status(pair string) (*models.TakeProfitSetup, *models.TrailingStopState, models.RemainingPosition) {
	return m.takeProfits.Status(pair), m.trailing.Status(pair), m.takeProfits.Remaining(pair)
}

// Close drops all monitoring state for the pair after the position is
// fully closed.
func (m *PositionManager) Close(pair string) {
	m.takeProfits.Clear(pair)
	m.trailing.Clear(pair)
}
