package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/kafka"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	eventDomain "github.com/homefix/service-booking/internal/domain/event"
	"go.uber.org/zap"
)

const (
	// TopicBookingEvents carries every recorded booking event.
	TopicBookingEvents = "booking.events"
	eventSource        = "service-booking"
)

// EventRecorder appends booking events inside the caller's transaction and publishes
// them once that transaction has committed.
type EventRecorder struct {
	clock     *Clock
	publisher kafka.Publisher
	logger    *zap.Logger
}

// NewEventRecorder creates a new EventRecorder.
func NewEventRecorder(clock *Clock, publisher kafka.Publisher, logger *zap.Logger) *EventRecorder {
	return &EventRecorder{clock: clock, publisher: publisher, logger: logger}
}

// Record appends one event through repo and returns it for later publishing.
func (r *EventRecorder) Record(
	ctx context.Context,
	repo eventDomain.EventRepository,
	bookingID uuid.UUID,
	eventType eventDomain.EventType,
	oldStatus, newStatus *bookingDomain.BookingStatus,
	actor eventDomain.Actor,
	metadata map[string]any,
) (*eventDomain.BookingEvent, error) {
	evt, err := eventDomain.NewBookingEvent(bookingID, eventType, oldStatus, newStatus, actor, metadata, r.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to build %s event: %w", eventType, err)
	}
	if err := repo.Append(ctx, evt); err != nil {
		return nil, err
	}
	return evt, nil
}

// Publish sends committed events to Kafka. Failures are logged, not returned.
func (r *EventRecorder) Publish(ctx context.Context, events []*eventDomain.BookingEvent) {
	for _, evt := range events {
		eventType := "booking." + string(evt.EventType())
		cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, toEventDTO(evt))
		if err != nil {
			r.logger.Error("failed to create cloud event",
				zap.String("event_type", eventType),
				zap.Error(err),
			)
			continue
		}
		cloudEvent.Subject = evt.BookingID().String()

		if err := r.publisher.PublishEvent(ctx, TopicBookingEvents, evt.BookingID().String(), cloudEvent); err != nil {
			r.logger.Error("failed to publish event",
				zap.String("topic", TopicBookingEvents),
				zap.String("event_type", eventType),
				zap.String("booking_id", evt.BookingID().String()),
				zap.Error(err),
			)
		}
	}
}
