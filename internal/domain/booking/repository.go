package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows ListViews. Nil fields are ignored.
type ListFilter struct {
	CustomerID *uuid.UUID
	ProviderID *uuid.UUID
	Status     *BookingStatus
}

// View is a booking joined with customer and provider display fields.
type View struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	ProviderID    *uuid.UUID
	ServiceType   ServiceType
	Status        BookingStatus
	ScheduledAt   time.Time
	Address       string
	Notes         string
	RetryCount    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ProviderName  string
	ProviderEmail string
	ProviderPhone string
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByIDForUpdate retrieves a booking and locks its row until the surrounding
	// transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindView retrieves a single booking joined with display fields.
	FindView(ctx context.Context, id uuid.UUID) (*View, error)

	// ListViews retrieves bookings matching filter, newest first.
	ListViews(ctx context.Context, filter ListFilter) ([]*View, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
