package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"

	"perfume-advisor-be/internal/dto"
	"perfume-advisor-be/internal/pkg/logger"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService writes every conversation event to the audit log.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	audit      logger.ILogger
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	audit logger.ILogger,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		audit:      audit,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.EventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// invalid payloads would be redelivered forever
		msg.Ack()
		return
	}

	details := make(map[string]interface{}, len(payload.Data)+1)
	for k, v := range payload.Data {
		details[k] = v
	}
	details["occurred_at"] = payload.OccurredAt

	cs.audit.Info("HISTORY", payload.Type, details)
	msg.Ack()
}
