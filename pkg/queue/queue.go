package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Dispatcher enqueues work for asynchronous processing.
type Dispatcher interface {
	Dispatch(ctx context.Context, msgType string, payload interface{}) error
}

// Config contains the queue tuning knobs.
type Config struct {
	Workers    int           // number of worker goroutines
	RetryLimit int           // maximum retries before dead-lettering
	RetryDelay time.Duration // delay between retries
}

// Message is one unit of queued work.
type Message struct {
	ID        string
	Type      string
	Payload   interface{}
	Attempts  int
	Timestamp time.Time
}

// ParsePayload converts a queued payload back into its typed form. A
// payload that crossed Redis arrives as json.RawMessage or a generic
// map; one dispatched in-process may still be the typed value.
func ParsePayload[T any](payload interface{}) (*T, error) {
	var result T

	switch p := payload.(type) {
	case *T:
		return p, nil
	case T:
		return &p, nil
	case json.RawMessage:
		if err := json.Unmarshal(p, &result); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		return &result, nil
	case map[string]interface{}, []interface{}:
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("remarshal payload: %w", err)
		}
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		return &result, nil
	default:
		return nil, fmt.Errorf("invalid payload type: %T", payload)
	}
}
