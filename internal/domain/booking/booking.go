package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/domain"
)

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id          uuid.UUID
	customerID  uuid.UUID
	providerID  *uuid.UUID
	serviceType ServiceType
	status      BookingStatus
	scheduledAt time.Time
	address     string
	notes       string
	retryCount  int

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate in pending with no provider.
func NewBooking(
	customerID uuid.UUID,
	serviceType ServiceType,
	scheduledAt time.Time,
	address string,
	notes string,
	now time.Time,
) (*Booking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if !serviceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid service type: %s", serviceType))
	}
	if scheduledAt.IsZero() {
		return nil, domain.NewValidationError("scheduled time is required")
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.NewValidationError("address is required")
	}

	return &Booking{
		id:          uuid.New(),
		customerID:  customerID,
		serviceType: serviceType,
		status:      StatusPending,
		scheduledAt: scheduledAt.UTC(),
		address:     address,
		notes:       notes,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	customerID uuid.UUID,
	providerID *uuid.UUID,
	serviceType ServiceType,
	status BookingStatus,
	scheduledAt time.Time,
	address string,
	notes string,
	retryCount int,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:          id,
		customerID:  customerID,
		providerID:  providerID,
		serviceType: serviceType,
		status:      status,
		scheduledAt: scheduledAt,
		address:     address,
		notes:       notes,
		retryCount:  retryCount,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// CustomerID returns the requesting customer's ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// ProviderID returns the assigned provider's ID, or nil if unassigned.
func (b *Booking) ProviderID() *uuid.UUID { return b.providerID }

// ServiceType returns the requested kind of service.
func (b *Booking) ServiceType() ServiceType { return b.serviceType }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// ScheduledAt returns when the service should take place.
func (b *Booking) ScheduledAt() time.Time { return b.scheduledAt }

// Address returns the service address.
func (b *Booking) Address() string { return b.address }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// RetryCount returns how many times the booking was recycled to pending.
func (b *Booking) RetryCount() int { return b.retryCount }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// AssignProvider sets the provider and moves the booking to assigned.
// Only pending, rejected and no_show bookings accept an assignment.
func (b *Booking) AssignProvider(providerID uuid.UUID, now time.Time) error {
	if !b.status.IsAssignable() {
		return domain.NewConflictError(fmt.Sprintf("booking cannot be assigned in status '%s'", b.status))
	}
	if providerID == uuid.Nil {
		return domain.NewValidationError("provider ID is required")
	}
	b.providerID = &providerID
	b.status = StatusAssigned
	b.updatedAt = now
	return nil
}

// ApplyDecision persists the outcome of a retry decision. A recycled booking loses
// its provider.
func (b *Booking) ApplyDecision(decision RetryDecision, now time.Time) {
	b.status = decision.FinalStatus
	b.retryCount = decision.NextRetryCount
	if decision.Recycle {
		b.providerID = nil
	}
	b.updatedAt = now
}

// SetProvider replaces the provider directly. A nil ID clears it.
func (b *Booking) SetProvider(providerID *uuid.UUID, now time.Time) {
	b.providerID = providerID
	b.updatedAt = now
}

// SetNotes replaces the free-text notes.
func (b *Booking) SetNotes(notes string, now time.Time) {
	b.notes = notes
	b.updatedAt = now
}

// Touch refreshes updatedAt without changing any other field.
func (b *Booking) Touch(now time.Time) {
	b.updatedAt = now
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
