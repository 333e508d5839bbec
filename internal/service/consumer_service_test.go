package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfume-advisor-be/internal/pkg/logger"
	"perfume-advisor-be/pkg/events"
)

type auditCapture struct {
	mu      sync.Mutex
	entries []string
	details []map[string]interface{}
}

func (a *auditCapture) record(message string, details map[string]interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, message)
	a.details = append(a.details, details)
}

func (a *auditCapture) Debug(_, message string, details map[string]interface{}) {}
func (a *auditCapture) Info(_, message string, details map[string]interface{}) {
	a.record(message, details)
}
func (a *auditCapture) Warn(_, message string, details map[string]interface{})  {}
func (a *auditCapture) Error(_, message string, details map[string]interface{}) {}
func (a *auditCapture) Sync() error                                              { return nil }

func (a *auditCapture) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

func TestPublishAndConsume(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	audit := &auditCapture{}
	consumer := NewConsumerService(pubSub, "advisor_events", audit, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(pubSub, "advisor_events")
	err := publisher.Publish(ctx, events.BaseEvent{
		Type:       events.TypeAnswerRecorded,
		Data:       map[string]interface{}{"session_id": "s1", "answer_text": "Floral"},
		OccurredAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return audit.count() == 1 }, time.Second, 10*time.Millisecond)

	audit.mu.Lock()
	defer audit.mu.Unlock()
	assert.Equal(t, events.TypeAnswerRecorded, audit.entries[0])
	assert.Equal(t, "s1", audit.details[0]["session_id"])
	assert.Equal(t, "Floral", audit.details[0]["answer_text"])
}
