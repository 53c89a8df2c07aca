package service

import (
	"context"

	"chatpulse/internal/pkg/logger"
	"chatpulse/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// LiveDelivery pushes an event to the UI clients watching its identifier.
type LiveDelivery interface {
	Deliver(event events.LiveEvent)
}

// EventRepublisher forwards events off the process, e.g. to NATS.
type EventRepublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the live topic into the hub and, when configured,
// republishes each event.
type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	delivery    LiveDelivery
	republisher EventRepublisher
	logger      logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery LiveDelivery,
	republisher EventRepublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		delivery:    delivery,
		republisher: republisher,
		logger:      log,
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
	event, err := events.UnmarshalLiveEvent(msg.Payload)
	if err != nil {
		cs.logger.Error("LiveForwarder", "Failed to unmarshal live event", map[string]interface{}{"error": err.Error(), "uuid": msg.UUID})
		// Ack invalid messages to prevent infinite retry
		msg.Ack()
		return
	}

	if cs.delivery != nil {
		cs.delivery.Deliver(event)
	}

	if cs.republisher != nil {
		if err := cs.republisher.Publish(ctx, event); err != nil {
			cs.logger.Warn("LiveForwarder", "Failed to republish live event", map[string]interface{}{
				"error": err.Error(),
				"type":  event.Type,
			})
		}
	}

	msg.Ack()
}
