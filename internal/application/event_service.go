package application

import (
	"context"

	"github.com/homefix/service-booking/internal/common/domain"
	eventDomain "github.com/homefix/service-booking/internal/domain/event"
	"github.com/homefix/service-booking/internal/domain/store"
)

// ListEventsQuery holds optional event list filters.
type ListEventsQuery struct {
	BookingID string `form:"booking_id"`
	EventType string `form:"event_type"`
	ActorType string `form:"actor_type"`
	Limit     int    `form:"limit"`
}

// EventService serves the booking audit log.
type EventService struct {
	store store.Store
}

// NewEventService creates a new EventService.
func NewEventService(st store.Store) *EventService {
	return &EventService{store: st}
}

// ListEvents returns events newest first. The limit defaults to 100 and is capped at 500.
func (s *EventService) ListEvents(ctx context.Context, q ListEventsQuery) ([]EventViewDTO, error) {
	filter := eventDomain.ListFilter{Limit: q.Limit}
	if q.BookingID != "" {
		id, err := parseID("booking_id", q.BookingID)
		if err != nil {
			return nil, err
		}
		filter.BookingID = &id
	}
	if q.EventType != "" {
		t, err := eventDomain.ParseEventType(q.EventType)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		filter.EventType = &t
	}
	if q.ActorType != "" {
		a, err := eventDomain.ParseActorType(q.ActorType)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		filter.ActorType = &a
	}

	views, err := s.store.Events().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]EventViewDTO, len(views))
	for i, v := range views {
		dtos[i] = toEventViewDTO(v)
	}
	return dtos, nil
}
