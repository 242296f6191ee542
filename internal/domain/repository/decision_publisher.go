package repository

import "context"

// Pipeline stages published as decision events.
const (
	StageSignal   = "signal"
	StageRisk     = "risk"
	StagePosition = "position"
)

// DecisionPublisher emits each pipeline stage's decision to downstream
// consumers. Key is the trading pair, payload marshals to JSON.
type DecisionPublisher interface {
	Publish(ctx context.Context, stage, key string, payload any) error
	Close() error
}
