package usecase

import (
	"context"
	"math"
	"testing"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/domain/repository"
	"TradeFlow/internal/services/indicators"
)

func (s *stubHistory) Health(context.Context) error { return nil }

func (s *stubHistory) Close() error { return nil }

// fakeStore is an in-memory candle store keyed by pair.
type fakeStore struct {
	bars    map[string][]models.Candle
	appends int
}

func newFakeStore() *fakeStore {
	return &fakeStore{bars: make(map[string][]models.Candle)}
}

func (s *fakeStore) Append(_ context.Context, pair string, _ repository.Timeframe, c models.Candle) error {
	s.appends++
	s.bars[pair] = append(s.bars[pair], c)
	return nil
}

func (s *fakeStore) Latest(_ context.Context, pair string, _ repository.Timeframe, limit int) ([]models.Candle, error) {
	bars := s.bars[pair]
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

type publishedEvent struct {
	Stage string
	Key   string
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, stage, key string, _ any) error {
	p.events = append(p.events, publishedEvent{Stage: stage, Key: key})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func stubSell(name string, strength float64) indicators.Indicator {
	return &stubIndicator{name: name, signal: models.IndicatorSignal{
		Indicator: name,
		Action:    models.ActionSell,
		Strength:  strength,
		Reason:    "stubbed sell",
	}}
}

type pipelineParts struct {
	pipeline  *Pipeline
	store     *fakeStore
	publisher *fakePublisher
	history   *stubHistory
	positions *PositionManager
	gateway   *stubGateway
}

func newPipeline(t *testing.T, inds []indicators.Indicator, positions *PositionManager, gw *stubGateway) *pipelineParts {
	t.Helper()
	signal := NewSignalAgent(SignalAgentConfig{
		Indicators:    inds,
		FusionMethod:  models.FusionWeightedAverage,
		MinConfidence: 0.5,
	}, testLogger(t), nil)
	riskAgent := newRiskAgent(t, &stubAccounts{state: &models.AccountState{Balance: 10000}}, nil)
	if positions == nil {
		gw = &stubGateway{dryValid: true}
		positions = newPositionManager(t, gw)
	}
	store := newFakeStore()
	publisher := &fakePublisher{}
	history := &stubHistory{}
	p := NewPipeline(signal, riskAgent, positions, store, publisher, history,
		repository.TF1h, 50, testLogger(t), nil)
	return &pipelineParts{
		pipeline:  p,
		store:     store,
		publisher: publisher,
		history:   history,
		positions: positions,
		gateway:   gw,
	}
}

func buyIndicators() []indicators.Indicator {
	return []indicators.Indicator{stubBuy("ema", 0.9), stubBuy("rsi", 0.9)}
}

func conflictIndicators() []indicators.Indicator {
	return []indicators.Indicator{stubBuy("ema", 0.9), stubSell("rsi", 0.9)}
}

func TestPipelineExecutesFullChain(t *testing.T) {
	parts := newPipeline(t, buyIndicators(), nil, nil)

	update := &models.CandleUpdate{Pair: "BTC/USDT", Timeframe: "1h", Candles: rangedSeries(25)}
	result, err := parts.pipeline.HandleCandle(context.Background(), update)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if result.Update != nil {
		t.Fatalf("no open position, monitor update should be nil")
	}
	if result.Signal == nil || !result.Signal.ShouldTrade {
		t.Fatalf("signal = %+v", result.Signal)
	}
	if result.Risk == nil || !result.Risk.Approved {
		t.Fatalf("risk = %+v", result.Risk)
	}
	if result.Risk.StopLoss != 92 {
		t.Fatalf("stop = %v, want 92", result.Risk.StopLoss)
	}
	if result.Position == nil || result.Position.Status != models.ExecExecuted {
		t.Fatalf("position = %+v", result.Position)
	}
	if parts.store.appends != 0 {
		t.Fatalf("an update carrying its own series must bypass the store")
	}

	stages := make([]string, 0, len(parts.publisher.events))
	for _, e := range parts.publisher.events {
		if e.Key != "BTC/USDT" {
			t.Fatalf("published key %q", e.Key)
		}
		stages = append(stages, e.Stage)
	}
	want := []string{repository.StageSignal, repository.StageRisk, repository.StagePosition}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v", stages)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("stage[%d] = %q, want %q", i, stages[i], want[i])
		}
	}
}

func TestPipelineHoldStopsAtSignal(t *testing.T) {
	parts := newPipeline(t, conflictIndicators(), nil, nil)

	update := &models.CandleUpdate{Pair: "BTC/USDT", Timeframe: "1h", Candles: rangedSeries(25)}
	result, err := parts.pipeline.HandleCandle(context.Background(), update)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if result.Signal.Action != models.ActionHold {
		t.Fatalf("conflicting indicators should hold, got %v", result.Signal.Action)
	}
	if result.Risk != nil || result.Position != nil {
		t.Fatalf("hold must not reach risk or execution")
	}
	if len(parts.publisher.events) != 1 || parts.publisher.events[0].Stage != repository.StageSignal {
		t.Fatalf("events = %v", parts.publisher.events)
	}
}

func TestPipelineMonitorsOpenPosition(t *testing.T) {
	opened := newPipeline(t, buyIndicators(), nil, nil)
	update := &models.CandleUpdate{Pair: "BTC/USDT", Timeframe: "1h", Candles: rangedSeries(25)}
	if _, err := opened.pipeline.HandleCandle(context.Background(), update); err != nil {
		t.Fatalf("open position: %v", err)
	}

	// same position manager, but a holding signal agent so no new trade
	// interferes with the monitoring state
	watcher := newPipeline(t, conflictIndicators(), opened.positions, opened.gateway)

	rally := rangedSeries(25)
	rally[24].Close = 109
	rally[24].High = 110
	result, err := watcher.pipeline.HandleCandle(context.Background(),
		&models.CandleUpdate{Pair: "BTC/USDT", Timeframe: "1h", Candles: rally})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if result.Update == nil {
		t.Fatalf("the rally should have triggered position actions")
	}
	var tpHit bool
	var newStop float64
	for _, a := range result.Update.Actions {
		switch a.Type {
		case models.PositionTakeProfitHit:
			tpHit = true
			if len(a.Targets) != 1 || a.Targets[0].Price != 108 {
				t.Fatalf("targets = %+v", a.Targets)
			}
		case models.PositionTrailingUpdated:
			newStop = a.StopPrice
		}
	}
	if !tpHit {
		t.Fatalf("109 is through the 108 target, actions %v", result.Update.Actions)
	}
	if math.Abs(newStop-109*0.98) > 1e-9 {
		t.Fatalf("trailed stop = %v", newStop)
	}

	// a drop through the trailed stop closes the position and records
	// the outcome
	crash := rangedSeries(25)
	crash[24].Close = 95
	result, err = watcher.pipeline.HandleCandle(context.Background(),
		&models.CandleUpdate{Pair: "BTC/USDT", Timeframe: "1h", Candles: crash})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	stopHit := false
	for _, a := range result.Update.Actions {
		if a.Type == models.PositionStopHit {
			stopHit = true
		}
	}
	if !stopHit {
		t.Fatalf("95 is through the stop, actions %v", result.Update.Actions)
	}
	if len(watcher.history.recorded) != 1 {
		t.Fatalf("recorded outcomes = %d, want 1", len(watcher.history.recorded))
	}
	if pnl := watcher.history.recorded[0].PnL; math.Abs(pnl-(-5)) > 1e-6 {
		t.Fatalf("pnl = %v, want -5", pnl)
	}
	if opened.positions.trailing.Tracked("BTC/USDT") {
		t.Fatalf("stop hit should clear the monitoring state")
	}
}

func TestPipelineStoresSingleBarTriggers(t *testing.T) {
	parts := newPipeline(t, conflictIndicators(), nil, nil)

	update := &models.CandleUpdate{
		Pair: "BTC/USDT", Timeframe: "1h", Timestamp: 1700000000,
		Open: 100, High: 102, Low: 98, Close: 100, Volume: 50,
	}
	result, err := parts.pipeline.HandleCandle(context.Background(), update)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if parts.store.appends != 1 {
		t.Fatalf("appends = %d, want 1", parts.store.appends)
	}
	if result.Signal == nil || result.Signal.Pair != "BTC/USDT" {
		t.Fatalf("signal = %+v", result.Signal)
	}
}

func TestPipelineRejectsUpdateWithoutPair(t *testing.T) {
	parts := newPipeline(t, buyIndicators(), nil, nil)

	if _, err := parts.pipeline.HandleCandle(context.Background(), nil); err == nil {
		t.Fatalf("nil update must error")
	}
	if _, err := parts.pipeline.HandleCandle(context.Background(), &models.CandleUpdate{}); err == nil {
		t.Fatalf("missing pair must error")
	}
}
