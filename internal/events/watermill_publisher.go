package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// WatermillPublisher sends events through any watermill publisher.
// Each event type is its own topic.
type WatermillPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewKafkaPublisher publishes to the given Kafka brokers
func NewKafkaPublisher(brokers []string, logger *slog.Logger) (*WatermillPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &WatermillPublisher{publisher: publisher, logger: logger}, nil
}

// NewGoChannelPublisher keeps events in-process. Used when no broker is configured.
func NewGoChannelPublisher(logger *slog.Logger) (*WatermillPublisher, *gochannel.GoChannel) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
	return &WatermillPublisher{publisher: pubSub, logger: logger}, pubSub
}

// NewEventPublisher picks Kafka when brokers are set, otherwise the in-process channel
func NewEventPublisher(brokers []string, logger *slog.Logger) (EventPublisher, error) {
	if len(brokers) > 0 {
		return NewKafkaPublisher(brokers, logger)
	}
	publisher, _ := NewGoChannelPublisher(logger)
	return publisher, nil
}

func (p *WatermillPublisher) publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(event.Type, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.Debug("Event published", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (p *WatermillPublisher) PublishUserCreated(ctx context.Context, event UserCreatedEvent) error {
	return p.publish(ctx, newEvent(TypeUserCreated, event))
}

func (p *WatermillPublisher) PublishUserRoleChanged(ctx context.Context, event UserRoleChangedEvent) error {
	return p.publish(ctx, newEvent(TypeUserRoleChanged, event))
}

func (p *WatermillPublisher) PublishUserArchived(ctx context.Context, event UserArchivedEvent) error {
	return p.publish(ctx, newEvent(TypeUserArchived, event))
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}
