package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/domain"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProviderID  *uuid.UUID `gorm:"type:uuid;index"`
	ServiceType string     `gorm:"type:varchar(30);not null"`
	Status      string     `gorm:"type:varchar(20);not null;index"`
	ScheduledAt time.Time  `gorm:"not null"`
	Address     string     `gorm:"type:text;not null"`
	Notes       string     `gorm:"type:text"`
	RetryCount  int        `gorm:"not null;default:0"`
	Version     int64      `gorm:"not null;default:1"`
	CreatedAt   time.Time  `gorm:"not null;index"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// bookingViewRow is the scan target of the booking read-model query.
type bookingViewRow struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	ProviderID    *uuid.UUID
	ServiceType   string
	Status        string
	ScheduledAt   time.Time
	Address       string
	Notes         string
	RetryCount    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	ProviderName  *string
	ProviderEmail *string
	ProviderPhone *string
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a booking with SELECT ... FOR UPDATE. Dialects without
// row locks (SQLite) drop the clause and rely on the version check in Update.
func (r *GormBookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormBookingRepository) find(db *gorm.DB, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindView retrieves a single booking joined with customer and provider fields.
func (r *GormBookingRepository) FindView(ctx context.Context, id uuid.UUID) (*bookingDomain.View, error) {
	views, err := r.queryViews(ctx, bookingViewQuery().Where(sq.Eq{"b.id": id.String()}))
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return views[0], nil
}

// ListViews retrieves bookings matching filter, newest first.
func (r *GormBookingRepository) ListViews(ctx context.Context, filter bookingDomain.ListFilter) ([]*bookingDomain.View, error) {
	query := bookingViewQuery()
	if filter.CustomerID != nil {
		query = query.Where(sq.Eq{"b.customer_id": filter.CustomerID.String()})
	}
	if filter.ProviderID != nil {
		query = query.Where(sq.Eq{"b.provider_id": filter.ProviderID.String()})
	}
	if filter.Status != nil {
		query = query.Where(sq.Eq{"b.status": filter.Status.String()})
	}
	return r.queryViews(ctx, query.OrderBy("b.created_at DESC"))
}

func bookingViewQuery() sq.SelectBuilder {
	return sq.Select(
		"b.id", "b.customer_id", "b.provider_id", "b.service_type", "b.status",
		"b.scheduled_at", "b.address", "b.notes", "b.retry_count", "b.created_at", "b.updated_at",
		"c.name AS customer_name", "c.email AS customer_email", "c.phone AS customer_phone",
		"p.name AS provider_name", "p.email AS provider_email", "p.phone AS provider_phone",
	).
		From("bookings b").
		LeftJoin("customers c ON c.id = b.customer_id").
		LeftJoin("providers p ON p.id = b.provider_id")
}

func (r *GormBookingRepository) queryViews(ctx context.Context, query sq.SelectBuilder) ([]*bookingDomain.View, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build booking query: %w", err)
	}

	var rows []bookingViewRow
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}

	views := make([]*bookingDomain.View, len(rows))
	for i := range rows {
		v, err := toBookingView(&rows[i])
		if err != nil {
			return nil, err
		}
		views[i] = v
	}
	return views, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion has already been called, so the stored row is one behind.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"provider_id": model.ProviderID,
			"status":      model.Status,
			"notes":       model.Notes,
			"retry_count": model.RetryCount,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:          bk.ID(),
		CustomerID:  bk.CustomerID(),
		ProviderID:  bk.ProviderID(),
		ServiceType: string(bk.ServiceType()),
		Status:      string(bk.Status()),
		ScheduledAt: bk.ScheduledAt(),
		Address:     bk.Address(),
		Notes:       bk.Notes(),
		RetryCount:  bk.RetryCount(),
		Version:     bk.Version(),
		CreatedAt:   bk.CreatedAt(),
		UpdatedAt:   bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	serviceType, err := bookingDomain.ParseServiceType(m.ServiceType)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.CustomerID,
		m.ProviderID,
		serviceType,
		status,
		m.ScheduledAt.UTC(),
		m.Address,
		m.Notes,
		m.RetryCount,
		m.Version,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}

func toBookingView(row *bookingViewRow) (*bookingDomain.View, error) {
	status, err := bookingDomain.ParseBookingStatus(row.Status)
	if err != nil {
		return nil, err
	}
	serviceType, err := bookingDomain.ParseServiceType(row.ServiceType)
	if err != nil {
		return nil, err
	}

	return &bookingDomain.View{
		ID:            row.ID,
		CustomerID:    row.CustomerID,
		ProviderID:    row.ProviderID,
		ServiceType:   serviceType,
		Status:        status,
		ScheduledAt:   row.ScheduledAt.UTC(),
		Address:       row.Address,
		Notes:         row.Notes,
		RetryCount:    row.RetryCount,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
		CustomerName:  deref(row.CustomerName),
		CustomerEmail: deref(row.CustomerEmail),
		CustomerPhone: deref(row.CustomerPhone),
		ProviderName:  deref(row.ProviderName),
		ProviderEmail: deref(row.ProviderEmail),
		ProviderPhone: deref(row.ProviderPhone),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
