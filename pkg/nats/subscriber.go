package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"perfume-advisor-be/internal/pkg/logger"
	"perfume-advisor-be/pkg/events"
)

// EventHandler processes one event. A returned error causes redelivery.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber reads the ADVISOR stream through durable consumers.
type Subscriber struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	log    logger.ILogger
	active []jetstream.ConsumeContext
}

func NewSubscriber(url string, log logger.ILogger) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js, log: log}, nil
}

// Subscribe delivers every event matching subject to handler until Close.
func (s *Subscriber) Subscribe(ctx context.Context, subject, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := decode(msg.Data())
		if err != nil {
			s.log.Error("NATS", "Dropping malformed event", map[string]interface{}{
				"subject": msg.Subject(),
				"error":   err.Error(),
			})
			// redelivery cannot fix a malformed body
			_ = msg.Term()
			return
		}

		if err := handler(ctx, event); err != nil {
			s.log.Warn("NATS", "Handler failed", map[string]interface{}{
				"subject": msg.Subject(),
				"error":   err.Error(),
			})
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.active = append(s.active, cc)

	s.log.Info("NATS", "Subscribed", map[string]interface{}{
		"subject": subject,
		"durable": durableName,
	})
	return nil
}

func (s *Subscriber) Close() {
	for _, cc := range s.active {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
