package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/domain/booking"
)

// EventType labels a booking audit record.
type EventType string

const (
	TypeBookingCreated   EventType = "booking_created"
	TypeProviderAssigned EventType = "provider_assigned"
	TypeProviderAccepted EventType = "provider_accepted"
	TypeProviderRejected EventType = "provider_rejected"
	TypeStatusChanged    EventType = "status_changed"
	TypeBookingCancelled EventType = "booking_cancelled"
	TypeNoShowReported   EventType = "no_show_reported"
	TypeRetryTriggered   EventType = "retry_triggered"
	TypeManualOverride   EventType = "manual_override"
	TypeAssignmentFailed EventType = "assignment_failed"
)

// IsValid returns true if the event type is recognized.
func (t EventType) IsValid() bool {
	switch t {
	case TypeBookingCreated, TypeProviderAssigned, TypeProviderAccepted, TypeProviderRejected,
		TypeStatusChanged, TypeBookingCancelled, TypeNoShowReported, TypeRetryTriggered,
		TypeManualOverride, TypeAssignmentFailed:
		return true
	}
	return false
}

// ParseEventType converts a string to an EventType, returning an error if invalid.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid event type: %s", s)
	}
	return t, nil
}

// ActorType identifies who caused a state change.
type ActorType string

const (
	ActorCustomer ActorType = "customer"
	ActorProvider ActorType = "provider"
	ActorSystem   ActorType = "system"
	ActorAdmin    ActorType = "admin"
)

// IsValid returns true if the actor type is recognized.
func (a ActorType) IsValid() bool {
	switch a {
	case ActorCustomer, ActorProvider, ActorSystem, ActorAdmin:
		return true
	}
	return false
}

// ParseActorType converts a string to an ActorType, returning an error if invalid.
func ParseActorType(s string) (ActorType, error) {
	a := ActorType(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid actor type: %s", s)
	}
	return a, nil
}

// Actor is the party attributed to a state change.
type Actor struct {
	Type ActorType
	ID   string
}

// Fixed system actors.
var (
	AutoAssignActor = Actor{Type: ActorSystem, ID: "auto-assign"}
	RetryActor      = Actor{Type: ActorSystem, ID: "retry-logic"}
)

// PrimaryEventType labels the event written for a requested status change.
func PrimaryEventType(requested booking.BookingStatus, adminOverride bool) EventType {
	switch requested {
	case booking.StatusCancelled:
		return TypeBookingCancelled
	case booking.StatusNoShow:
		return TypeNoShowReported
	case booking.StatusPending, booking.StatusAssigned, booking.StatusAccepted, booking.StatusRejected,
		booking.StatusInProgress, booking.StatusCompleted, booking.StatusFailed:
	}
	if adminOverride {
		return TypeManualOverride
	}
	return TypeStatusChanged
}

// BookingEvent is an immutable audit record of a booking state change.
type BookingEvent struct {
	id        uuid.UUID
	bookingID uuid.UUID
	eventType EventType
	oldStatus *booking.BookingStatus
	newStatus *booking.BookingStatus
	actor     Actor
	metadata  map[string]any
	createdAt time.Time
}

// NewBookingEvent creates a new event. Either status may be nil.
func NewBookingEvent(
	bookingID uuid.UUID,
	eventType EventType,
	oldStatus, newStatus *booking.BookingStatus,
	actor Actor,
	metadata map[string]any,
	now time.Time,
) (*BookingEvent, error) {
	if bookingID == uuid.Nil {
		return nil, fmt.Errorf("booking ID is required")
	}
	if !eventType.IsValid() {
		return nil, fmt.Errorf("invalid event type: %s", eventType)
	}
	if !actor.Type.IsValid() {
		return nil, fmt.Errorf("invalid actor type: %s", actor.Type)
	}

	return &BookingEvent{
		id:        uuid.New(),
		bookingID: bookingID,
		eventType: eventType,
		oldStatus: oldStatus,
		newStatus: newStatus,
		actor:     actor,
		metadata:  metadata,
		createdAt: now,
	}, nil
}

// Reconstruct rebuilds a BookingEvent from persistence.
func Reconstruct(
	id, bookingID uuid.UUID,
	eventType EventType,
	oldStatus, newStatus *booking.BookingStatus,
	actor Actor,
	metadata map[string]any,
	createdAt time.Time,
) *BookingEvent {
	return &BookingEvent{
		id:        id,
		bookingID: bookingID,
		eventType: eventType,
		oldStatus: oldStatus,
		newStatus: newStatus,
		actor:     actor,
		metadata:  metadata,
		createdAt: createdAt,
	}
}

// Getters.
func (e *BookingEvent) ID() uuid.UUID                     { return e.id }
func (e *BookingEvent) BookingID() uuid.UUID              { return e.bookingID }
func (e *BookingEvent) EventType() EventType              { return e.eventType }
func (e *BookingEvent) OldStatus() *booking.BookingStatus { return e.oldStatus }
func (e *BookingEvent) NewStatus() *booking.BookingStatus { return e.newStatus }
func (e *BookingEvent) Actor() Actor                      { return e.actor }
func (e *BookingEvent) Metadata() map[string]any          { return e.metadata }
func (e *BookingEvent) CreatedAt() time.Time              { return e.createdAt }

// StatusPtr returns a pointer to s, for building events.
func StatusPtr(s booking.BookingStatus) *booking.BookingStatus {
	return &s
}
