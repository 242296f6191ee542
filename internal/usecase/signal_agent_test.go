package usecase

import (
	"context"
	"testing"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/services/indicators"
	"TradeFlow/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// stubIndicator always reports the same signal.
type stubIndicator struct {
	name   string
	signal models.IndicatorSignal
}

func (s *stubIndicator) Name() string { return s.name }

func (s *stubIndicator) Evaluate(indicators.Series) models.IndicatorSignal { return s.signal }

func stubBuy(name string, strength float64) indicators.Indicator {
	return &stubIndicator{name: name, signal: models.IndicatorSignal{
		Indicator: name,
		Action:    models.ActionBuy,
		Strength:  strength,
		Reason:    "stubbed buy",
	}}
}

func rangedSeries(n int) indicators.Series {
	s := make(indicators.Series, n)
	for i := range s {
		s[i] = models.Candle{
			Timestamp: int64(1700000000 + i*3600),
			Open:      100,
			High:      102,
			Low:       98,
			Close:     100,
			Volume:    100,
		}
	}
	return s
}

func TestSignalAgentBuyDecision(t *testing.T) {
	agent := NewSignalAgent(SignalAgentConfig{
		Indicators:    []indicators.Indicator{stubBuy("ema", 0.9), stubBuy("rsi", 0.9)},
		FusionMethod:  models.FusionWeightedAverage,
		MinConfidence: 0.5,
	}, testLogger(t), nil)

	update := &models.CandleUpdate{Pair: "BTC/USDT", Timeframe: "1h"}
	decision := agent.Process(context.Background(), update, rangedSeries(25))

	if decision.Action != models.ActionBuy {
		t.Fatalf("action = %v, want buy", decision.Action)
	}
	if !decision.ShouldTrade {
		t.Fatalf("confidence %v should clear the 0.5 bar", decision.Confidence)
	}
	if decision.Pair != "BTC/USDT" || decision.Timeframe != "1h" {
		t.Fatalf("pair/timeframe = %q/%q", decision.Pair, decision.Timeframe)
	}
	if decision.Price != 100 {
		t.Fatalf("price = %v, want last close 100", decision.Price)
	}
	if len(decision.Indicators) != 2 {
		t.Fatalf("expected 2 indicator summaries, got %d", len(decision.Indicators))
	}
}

func TestSignalAgentMissingPairHolds(t *testing.T) {
	agent := NewSignalAgent(SignalAgentConfig{}, testLogger(t), nil)
	decision := agent.Process(context.Background(), nil, rangedSeries(5))
	if decision.Action != models.ActionHold {
		t.Fatalf("action = %v, want hold", decision.Action)
	}
	if decision.ShouldTrade {
		t.Fatalf("degraded input must not trade")
	}
	if decision.Reasoning != "missing pair in candle update" {
		t.Fatalf("reasoning = %q", decision.Reasoning)
	}
}

func TestSignalAgentEmptySeriesHolds(t *testing.T) {
	agent := NewSignalAgent(SignalAgentConfig{}, testLogger(t), nil)
	update := &models.CandleUpdate{Pair: "BTC/USDT", Timeframe: "1h"}
	decision := agent.Process(context.Background(), update, nil)
	if decision.Action != models.ActionHold {
		t.Fatalf("action = %v, want hold", decision.Action)
	}
	if decision.Reasoning != "no candle data available" {
		t.Fatalf("reasoning = %q", decision.Reasoning)
	}
	if decision.Pair != "BTC/USDT" {
		t.Fatalf("pair = %q, should carry over from the update", decision.Pair)
	}
}

func TestSignalAgentConflictingSignalsHold(t *testing.T) {
	sell := &stubIndicator{name: "rsi", signal: models.IndicatorSignal{
		Indicator: "rsi",
		Action:    models.ActionSell,
		Strength:  0.9,
		Reason:    "stubbed sell",
	}}
	agent := NewSignalAgent(SignalAgentConfig{
		Indicators:   []indicators.Indicator{stubBuy("ema", 0.9), sell},
		FusionMethod: models.FusionWeightedAverage,
	}, testLogger(t), nil)

	update := &models.CandleUpdate{Pair: "BTC/USDT", Timeframe: "1h"}
	decision := agent.Process(context.Background(), update, rangedSeries(25))
	if decision.Action != models.ActionHold {
		t.Fatalf("action = %v, want hold on a perfect conflict", decision.Action)
	}
}
