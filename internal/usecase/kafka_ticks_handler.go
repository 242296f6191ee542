package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"TradeFlow/internal/domain/models"
	pkgkafka "TradeFlow/pkg/kafka"
	"TradeFlow/pkg/metrics"
	"TradeFlow/pkg/queue"
)

// KafkaTicksHandler ingests closed candles from the ticks topic and
// feeds them to the pipeline queue, an alternative trigger to the
// webhook.
type KafkaTicksHandler struct {
	topic      string
	dispatcher queue.Dispatcher
	metrics    *metrics.Recorder
}

func NewKafkaTicksHandler(topic string, dispatcher queue.Dispatcher, rec *metrics.Recorder) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, dispatcher: dispatcher, metrics: rec}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

// incoming message schema: {pair, timeframe, timestamp, open, high, low, close, volume}
func (h *KafkaTicksHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Pair      string  `json:"pair"`
		Timeframe string  `json:"timeframe"`
		Timestamp int64   `json:"timestamp"`
		Open      float64 `json:"open"`
		High      float64 `json:"high"`
		Low       float64 `json:"low"`
		Close     float64 `json:"close"`
		Volume    float64 `json:"volume"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("ticks_unmarshal")
		}
		return fmt.Errorf("unmarshal tick candle: %w", err)
	}
	if m.Pair == "" {
		return nil // skip malformed frames silently
	}
	if m.Timestamp > 1e11 { // ms
		m.Timestamp /= 1000
	}

	update := &models.CandleUpdate{
		Pair:      m.Pair,
		Timeframe: m.Timeframe,
		Timestamp: m.Timestamp,
		Open:      m.Open,
		High:      m.High,
		Low:       m.Low,
		Close:     m.Close,
		Volume:    m.Volume,
	}
	if err := h.dispatcher.Dispatch(ctx, MsgTypeCandleUpdate, update); err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("ticks_dispatch")
		}
		return fmt.Errorf("dispatch tick candle: %w", err)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)
