package repository

import (
	"context"
	"fmt"
	"time"

	"TradeFlow/internal/domain/repository"
	pkgkafka "TradeFlow/pkg/kafka"
)

// KafkaDecisionPublisher emits each pipeline stage's decision to the
// decisions topic as JSON keyed by pair.
type KafkaDecisionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaDecisionPublisher creates the publisher over a shared producer.
func NewKafkaDecisionPublisher(producer *pkgkafka.Producer, topic string) repository.DecisionPublisher {
	return &KafkaDecisionPublisher{producer: producer, topic: topic}
}

func (p *KafkaDecisionPublisher) Publish(ctx context.Context, stage, key string, payload any) error {
	event := map[string]interface{}{
		"stage":      stage,
		"pair":       key,
		"decision":   payload,
		"emitted_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(key), event); err != nil {
		return fmt.Errorf("publish %s decision: %w", stage, err)
	}
	return nil
}

func (p *KafkaDecisionPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
