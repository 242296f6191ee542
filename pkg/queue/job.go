package queue

import "context"

// Job is a registered handler for one message type.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Type is the message type the job consumes.
	Type() string

	// Handle processes one payload.
	Handle(ctx context.Context, payload interface{}) error
}
