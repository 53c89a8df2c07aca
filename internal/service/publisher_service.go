package service

import (
	"context"
	"fmt"

	"chatpulse/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// LiveTopic is the in-process topic every live event goes through.
const LiveTopic = "live_events"

type IPublisherService interface {
	Publish(ctx context.Context, event events.LiveEvent) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) Publish(ctx context.Context, event events.LiveEvent) error {
	payload, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("encode live event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", event.Type)
	msg.Metadata.Set("identifier", event.Identifier)
	msg.SetContext(ctx)

	return ps.pubSub.Publish(ps.topicName, msg)
}
