package events

import (
	"context"
	"errors"
	"time"
)

// Event types emitted by the advisor.
const (
	TypeAnswerRecorded = "ANSWER_RECORDED"
	TypeSessionStarted = "SESSION_STARTED"
	TypeSessionReset   = "SESSION_RESET"
)

// Event is anything that can be put on the bus.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Publisher is implemented by every event transport (in-process bus, NATS).
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publishers fans an event out to every publisher and joins their errors.
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
