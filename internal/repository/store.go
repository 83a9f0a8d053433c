package repository

import (
	"context"

	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	customerDomain "github.com/homefix/service-booking/internal/domain/customer"
	eventDomain "github.com/homefix/service-booking/internal/domain/event"
	providerDomain "github.com/homefix/service-booking/internal/domain/provider"
	"github.com/homefix/service-booking/internal/domain/store"
	"gorm.io/gorm"
)

// Models lists every GORM model, in dependency order, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&CustomerModel{},
		&ProviderModel{},
		&BookingModel{},
		&BookingEventModel{},
	}
}

// GormStore bundles the GORM repositories over one *gorm.DB, which may be a transaction.
type GormStore struct {
	db        *gorm.DB
	bookings  *GormBookingRepository
	providers *GormProviderRepository
	customers *GormCustomerRepository
	events    *GormEventRepository
}

// NewGormStore creates a store over db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:        db,
		bookings:  NewGormBookingRepository(db),
		providers: NewGormProviderRepository(db),
		customers: NewGormCustomerRepository(db),
		events:    NewGormEventRepository(db),
	}
}

func (s *GormStore) Bookings() bookingDomain.BookingRepository    { return s.bookings }
func (s *GormStore) Providers() providerDomain.ProviderRepository { return s.providers }
func (s *GormStore) Customers() customerDomain.CustomerRepository { return s.customers }
func (s *GormStore) Events() eventDomain.EventRepository          { return s.events }

// InTx runs fn inside a database transaction.
func (s *GormStore) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
