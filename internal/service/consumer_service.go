package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-promptscope-be/internal/dto"
	"ai-promptscope-be/internal/pkg/logger"
	"ai-promptscope-be/pkg/events"
	pktNats "ai-promptscope-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process event bus and fans lifecycle
// events out to NATS. Forwarding is best-effort: a dead broker never
// blocks or retries the negotiation flow.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishNegotiationEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal event message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("ConsumerService", "Processing negotiation event", map[string]interface{}{
		"type":       payload.Type,
		"request_id": payload.RequestId,
	})

	if cs.eventPublisher != nil {
		data := payload.Data
		if data == nil {
			data = make(map[string]interface{})
		}
		data["request_id"] = payload.RequestId

		evt := events.BaseEvent{
			Type:       payload.Type,
			Data:       data,
			OccurredAt: payload.OccurredAt,
		}
		if evt.OccurredAt.IsZero() {
			evt.OccurredAt = time.Now()
		}

		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to forward event to NATS", map[string]interface{}{
				"type":  payload.Type,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
