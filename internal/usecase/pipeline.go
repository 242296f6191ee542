package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/domain/repository"
	"TradeFlow/internal/services/indicators"
	"TradeFlow/pkg/logger"
	"TradeFlow/pkg/metrics"
)

// PipelineResult aggregates the decisions of one end-to-end run.
type PipelineResult struct {
	Pair     string
	Signal   *models.SignalDecision
	Risk     *models.RiskDecision
	Position *models.PositionResult
	Update   *models.PositionUpdate
}

// Pipeline chains the three agents on every candle trigger: signal,
// then risk, then execution, publishing each stage's decision along
// the way.
type Pipeline struct {
	signal    *SignalAgent
	risk      *RiskAgent
	positions *PositionManager

	store     repository.CandleStore
	publisher repository.DecisionPublisher
	history   repository.TradeHistory

	timeframe   repository.Timeframe
	historyBars int

	log     *logger.Logger
	metrics *metrics.Recorder
}

// NewPipeline wires the full decision chain. Publisher and history are
// optional.
func NewPipeline(
	signal *SignalAgent,
	risk *RiskAgent,
	positions *PositionManager,
	store repository.CandleStore,
	publisher repository.DecisionPublisher,
	history repository.TradeHistory,
	timeframe repository.Timeframe,
	historyBars int,
	log *logger.Logger,
	rec *metrics.Recorder,
) *Pipeline {
	if historyBars <= 0 {
		historyBars = 100
	}
	return &Pipeline{
		signal:      signal,
		risk:        risk,
		positions:   positions,
		store:       store,
		publisher:   publisher,
		history:     history,
		timeframe:   timeframe,
		historyBars: historyBars,
		log:         log,
		metrics:     rec,
	}
}

// HandleCandle runs the pipeline for one candle update. The update is
// stored first so later triggers can run off a single bar.
func (p *Pipeline) HandleCandle(ctx context.Context, update *models.CandleUpdate) (*PipelineResult, error) {
	if update == nil || update.Pair == "" {
		return nil, fmt.Errorf("candle update without pair")
	}

	series, err := p.hydrate(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("hydrate candles for %s: %w", update.Pair, err)
	}

	result := &PipelineResult{Pair: update.Pair}

	if len(series) > 0 {
		result.Update = p.monitor(ctx, update.Pair, series.Last().Close)
	}

	result.Signal = p.signal.Process(ctx, update, series)
	p.publish(ctx, repository.StageSignal, update.Pair, result.Signal)

	if !result.Signal.ShouldTrade || !result.Signal.Action.Tradeable() {
		return result, nil
	}

	result.Risk = p.risk.Process(ctx, result.Signal, series, update)
	p.publish(ctx, repository.StageRisk, update.Pair, result.Risk)

	if !result.Risk.Approved {
		return result, nil
	}

	position, err := p.positions.Process(ctx, result.Risk)
	if err != nil {
		return result, fmt.Errorf("execute position for %s: %w", update.Pair, err)
	}
	result.Position = position
	p.publish(ctx, repository.StagePosition, update.Pair, position)

	return result, nil
}

// hydrate appends the trigger bar to the rolling store and returns the
// evaluation window. A trigger carrying its own series wins over the
// store.
func (p *Pipeline) hydrate(ctx context.Context, update *models.CandleUpdate) (indicators.Series, error) {
	if update.HasSeries() {
		return indicators.Series(update.Candles), nil
	}
	if !update.HasBar() {
		return nil, nil
	}
	tf := p.timeframe
	if parsed, err := repository.ParseTimeframe(update.Timeframe); err == nil {
		tf = parsed
	}
	if err := p.store.Append(ctx, update.Pair, tf, update.Bar()); err != nil {
		return nil, err
	}
	candles, err := p.store.Latest(ctx, update.Pair, tf, p.historyBars)
	if err != nil {
		return nil, err
	}
	return indicators.Series(candles), nil
}

// monitor advances the take-profit ladder and trailing stop for any
// open position on the pair before a new decision is made. A stop hit
// closes the monitoring state and records the outcome.
func (p *Pipeline) monitor(ctx context.Context, pair string, price float64) *models.PositionUpdate {
	update := p.positions.UpdatePosition(pair, price)
	if len(update.Actions) == 0 {
		return nil
	}

	for _, action := range update.Actions {
		switch action.Type {
		case models.PositionStopHit:
			p.log.Info("stop loss hit, closing position",
				logger.String("pair", pair), logger.Float64("price", price))
			p.recordOutcome(ctx, pair, price)
			p.positions.Close(pair)
		case models.PositionTrailingUpdated:
			p.log.Debug("trailing stop advanced",
				logger.String("pair", pair), logger.Float64("stop", action.StopPrice))
		case models.PositionTakeProfitHit:
			p.log.Info("take-profit target hit",
				logger.String("pair", pair), logger.Int("targets", len(action.Targets)))
		}
	}
	return update
}

// recordOutcome persists a closed trade for the Kelly history estimate.
func (p *Pipeline) recordOutcome(ctx context.Context, pair string, exitPrice float64) {
	if p.history == nil {
		return
	}
	_, trailing, _ := p.positions.Status(pair)
	if trailing == nil || trailing.EntryPrice == 0 {
		return
	}
	pnl := (exitPrice - trailing.EntryPrice) / trailing.EntryPrice
	if trailing.Action == models.ActionSell {
		pnl = -pnl
	}
	outcome := &models.TradeOutcome{
		Pair:     pair,
		PnL:      round6(pnl * 100),
		OpenedAt: trailing.CreatedAt,
		ClosedAt: time.Now().UTC(),
	}
	if err := p.history.Record(ctx, outcome); err != nil {
		p.log.Warn("trade outcome not recorded",
			logger.String("pair", pair), logger.Error(err))
	}
}

func (p *Pipeline) publish(ctx context.Context, stage, pair string, payload any) {
	if p.publisher == nil || payload == nil {
		return
	}
	if err := p.publisher.Publish(ctx, stage, pair, payload); err != nil {
		p.log.Warn("decision publish failed",
			logger.String("stage", stage), logger.String("pair", pair), logger.Error(err))
		if p.metrics != nil {
			p.metrics.RecordError("publish")
		}
	}
}
