// Package store declares the transactional unit of work shared by the repositories.
package store

import (
	"context"

	"github.com/homefix/service-booking/internal/domain/booking"
	"github.com/homefix/service-booking/internal/domain/customer"
	"github.com/homefix/service-booking/internal/domain/event"
	"github.com/homefix/service-booking/internal/domain/provider"
)

// Store groups the repositories that must commit together.
type Store interface {
	Bookings() booking.BookingRepository
	Providers() provider.ProviderRepository
	Customers() customer.CustomerRepository
	Events() event.EventRepository

	// InTx runs fn in a single database transaction. The Store passed to fn is bound
	// to the transaction; fn returning an error rolls it back.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
