package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/application"
	"github.com/homefix/service-booking/internal/common/domain"
	"github.com/homefix/service-booking/internal/common/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	// TopicProviderEvents carries provider lifecycle changes published by the provider app.
	TopicProviderEvents = "provider.events"

	// ProviderAvailabilityChanged is the CloudEvent type for an availability toggle.
	ProviderAvailabilityChanged = "provider.availability_changed"
)

// AvailabilityChangedEvent is the data of a provider.availability_changed CloudEvent.
type AvailabilityChangedEvent struct {
	ProviderID  uuid.UUID `json:"provider_id"`
	IsAvailable *bool     `json:"is_available"`
}

// AvailabilitySetter is the slice of the provider service the consumer depends on.
type AvailabilitySetter interface {
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*application.ProviderDTO, error)
}

// ProviderEventConsumer listens to provider events and keeps availability in sync.
type ProviderEventConsumer struct {
	consumer *kafka.Consumer
	service  AvailabilitySetter
	logger   *zap.Logger
}

// NewProviderEventConsumer creates a new ProviderEventConsumer.
func NewProviderEventConsumer(
	brokers []string,
	groupID string,
	service AvailabilitySetter,
	logger *zap.Logger,
) *ProviderEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicProviderEvents, logger)
	return &ProviderEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming provider events. This blocks until the context is cancelled.
func (c *ProviderEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.HandleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *ProviderEventConsumer) Close() error {
	return c.consumer.Close()
}

// HandleMessage dispatches one message by CloudEvent type.
func (c *ProviderEventConsumer) HandleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from provider topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case ProviderAvailabilityChanged:
		return c.handleAvailabilityChanged(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled provider event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *ProviderEventConsumer) handleAvailabilityChanged(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt AvailabilityChangedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse AvailabilityChangedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}
	if evt.ProviderID == uuid.Nil || evt.IsAvailable == nil {
		c.logger.Error("incomplete AvailabilityChangedEvent data",
			zap.String("event_id", cloudEvent.ID),
		)
		return nil
	}

	_, err := c.service.SetAvailability(ctx, evt.ProviderID, *evt.IsAvailable)
	if err != nil {
		if domain.CodeOf(err) == domain.CodeNotFound {
			c.logger.Warn("availability change for unknown provider",
				zap.String("provider_id", evt.ProviderID.String()),
			)
			return nil
		}
		c.logger.Error("failed to update provider availability",
			zap.String("provider_id", evt.ProviderID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("provider availability updated",
		zap.String("provider_id", evt.ProviderID.String()),
		zap.Bool("is_available", *evt.IsAvailable),
	)
	return nil
}
