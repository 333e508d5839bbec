package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubPublisher struct {
	calls int
	err   error
}

func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}

func TestPublishers(t *testing.T) {
	ok := &stubPublisher{}
	failing := &stubPublisher{err: errors.New("nats down")}
	evt := BaseEvent{Type: TypeSessionStarted, Data: map[string]interface{}{"session_id": "s1"}, OccurredAt: time.Now()}

	err := Publishers{failing, nil, ok}.Publish(context.Background(), evt)
	assert.ErrorContains(t, err, "nats down")
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, failing.calls)

	assert.NoError(t, Publishers{ok}.Publish(context.Background(), evt))
	assert.NoError(t, Publishers(nil).Publish(context.Background(), evt))
}
