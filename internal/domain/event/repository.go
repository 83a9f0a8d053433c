package event

import (
	"context"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/domain/booking"
)

// DefaultListLimit and MaxListLimit bound List.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// ListFilter narrows List. Nil fields are ignored.
type ListFilter struct {
	BookingID *uuid.UUID
	EventType *EventType
	ActorType *ActorType
	Limit     int
}

// View is an event joined with the booking and party names it refers to.
type View struct {
	Event        *BookingEvent
	ServiceType  booking.ServiceType
	Address      string
	CustomerName string
	ProviderName string
}

// EventRepository is append-only: there is no update or delete.
type EventRepository interface {
	Append(ctx context.Context, event *BookingEvent) error
	// FindByBookingID returns a booking's history oldest first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*BookingEvent, error)
	// List returns events matching filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*View, error)
}
