package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	eventDomain "github.com/homefix/service-booking/internal/domain/event"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BookingEventModel is the GORM model for the booking_events table.
type BookingEventModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;index"`
	EventType string    `gorm:"type:varchar(40);not null;index"`
	OldStatus *string   `gorm:"type:varchar(20)"`
	NewStatus *string   `gorm:"type:varchar(20)"`
	ActorType string    `gorm:"type:varchar(20);not null;index"`
	ActorID   string    `gorm:"type:varchar(100);not null"`
	Metadata  datatypes.JSONMap
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName sets the table name.
func (BookingEventModel) TableName() string { return "booking_events" }

// eventViewRow is the scan target of the event read-model query.
type eventViewRow struct {
	BookingEventModel
	ServiceType  string
	Address      string
	CustomerName *string
	ProviderName *string
}

// GormEventRepository implements EventRepository using GORM. It only ever inserts.
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository.
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// Append persists a new booking event.
func (r *GormEventRepository) Append(ctx context.Context, e *eventDomain.BookingEvent) error {
	model := toEventModel(e)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to append booking event: %w", err)
	}
	return nil
}

// FindByBookingID retrieves a booking's events oldest first.
func (r *GormEventRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*eventDomain.BookingEvent, error) {
	var models []BookingEventModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking events: %w", err)
	}

	events := make([]*eventDomain.BookingEvent, len(models))
	for i := range models {
		e, err := toEventDomain(&models[i])
		if err != nil {
			return nil, err
		}
		events[i] = e
	}
	return events, nil
}

// List retrieves events matching filter, newest first, joined with booking details.
func (r *GormEventRepository) List(ctx context.Context, filter eventDomain.ListFilter) ([]*eventDomain.View, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = eventDomain.DefaultListLimit
	}
	if limit > eventDomain.MaxListLimit {
		limit = eventDomain.MaxListLimit
	}

	query := sq.Select(
		"e.id", "e.booking_id", "e.event_type", "e.old_status", "e.new_status",
		"e.actor_type", "e.actor_id", "e.metadata", "e.created_at",
		"b.service_type", "b.address",
		"c.name AS customer_name", "p.name AS provider_name",
	).
		From("booking_events e").
		Join("bookings b ON b.id = e.booking_id").
		LeftJoin("customers c ON c.id = b.customer_id").
		LeftJoin("providers p ON p.id = b.provider_id")

	if filter.BookingID != nil {
		query = query.Where(sq.Eq{"e.booking_id": filter.BookingID.String()})
	}
	if filter.EventType != nil {
		query = query.Where(sq.Eq{"e.event_type": string(*filter.EventType)})
	}
	if filter.ActorType != nil {
		query = query.Where(sq.Eq{"e.actor_type": string(*filter.ActorType)})
	}
	query = query.OrderBy("e.created_at DESC").Limit(uint64(limit))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build event query: %w", err)
	}

	var rows []eventViewRow
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list booking events: %w", err)
	}

	views := make([]*eventDomain.View, len(rows))
	for i := range rows {
		e, err := toEventDomain(&rows[i].BookingEventModel)
		if err != nil {
			return nil, err
		}
		serviceType, err := bookingDomain.ParseServiceType(rows[i].ServiceType)
		if err != nil {
			return nil, err
		}
		views[i] = &eventDomain.View{
			Event:        e,
			ServiceType:  serviceType,
			Address:      rows[i].Address,
			CustomerName: deref(rows[i].CustomerName),
			ProviderName: deref(rows[i].ProviderName),
		}
	}
	return views, nil
}

func toEventModel(e *eventDomain.BookingEvent) BookingEventModel {
	var metadata datatypes.JSONMap
	if e.Metadata() != nil {
		metadata = datatypes.JSONMap(e.Metadata())
	}
	return BookingEventModel{
		ID:        e.ID(),
		BookingID: e.BookingID(),
		EventType: string(e.EventType()),
		OldStatus: statusString(e.OldStatus()),
		NewStatus: statusString(e.NewStatus()),
		ActorType: string(e.Actor().Type),
		ActorID:   e.Actor().ID,
		Metadata:  metadata,
		CreatedAt: e.CreatedAt(),
	}
}

func toEventDomain(m *BookingEventModel) (*eventDomain.BookingEvent, error) {
	eventType, err := eventDomain.ParseEventType(m.EventType)
	if err != nil {
		return nil, err
	}
	actorType, err := eventDomain.ParseActorType(m.ActorType)
	if err != nil {
		return nil, err
	}
	oldStatus, err := parseStatusPtr(m.OldStatus)
	if err != nil {
		return nil, err
	}
	newStatus, err := parseStatusPtr(m.NewStatus)
	if err != nil {
		return nil, err
	}

	var metadata map[string]any
	if m.Metadata != nil {
		metadata = normalizeMetadata(map[string]any(m.Metadata))
	}

	return eventDomain.Reconstruct(
		m.ID,
		m.BookingID,
		eventType,
		oldStatus,
		newStatus,
		eventDomain.Actor{Type: actorType, ID: m.ActorID},
		metadata,
		m.CreatedAt.UTC(),
	), nil
}

// normalizeMetadata turns the json.Number values produced by the JSON column into
// int64 or float64, so callers see the same types they stored.
func normalizeMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeJSONValue(v)
	}
	return out
}

func normalizeJSONValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		return normalizeMetadata(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeJSONValue(item)
		}
		return out
	default:
		return v
	}
}

func statusString(s *bookingDomain.BookingStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func parseStatusPtr(s *string) (*bookingDomain.BookingStatus, error) {
	if s == nil {
		return nil, nil
	}
	status, err := bookingDomain.ParseBookingStatus(*s)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
