package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/domain"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	eventDomain "github.com/homefix/service-booking/internal/domain/event"
	"github.com/homefix/service-booking/internal/domain/store"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Result messages returned alongside bookings.
const (
	MsgCreatedAndAssigned = "Booking created and provider assigned"
	MsgCreatedAwaiting    = "Booking created, awaiting provider assignment"
	MsgManuallyAssigned   = "Provider manually assigned"
	MsgAutoAssigned       = "Provider auto-assigned"
	MsgUpdated            = "Booking updated successfully"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CustomerID  string    `json:"customer_id" binding:"required"`
	ServiceType string    `json:"service_type" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Address     string    `json:"address" binding:"required"`
	Notes       string    `json:"notes"`
}

// UpdateBookingRequest holds the optional fields of a booking update. A nil field is
// left untouched; an empty ProviderID clears the provider.
type UpdateBookingRequest struct {
	Status     *string `json:"status"`
	ProviderID *string `json:"provider_id"`
	Notes      *string `json:"notes"`
}

// ListBookingsQuery holds optional booking list filters as received from callers.
type ListBookingsQuery struct {
	CustomerID string `form:"customer_id"`
	ProviderID string `form:"provider_id"`
	Status     string `form:"status"`
}

// BookingService is the application service orchestrating the booking lifecycle.
type BookingService struct {
	store    store.Store
	engine   *AssignmentEngine
	recorder *EventRecorder
	retry    bookingDomain.RetryPolicy
	clock    *Clock
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	st store.Store,
	engine *AssignmentEngine,
	recorder *EventRecorder,
	retry bookingDomain.RetryPolicy,
	clock *Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:    st,
		engine:   engine,
		recorder: recorder,
		retry:    retry,
		clock:    clock,
		logger:   logger,
	}
}

// CreateBooking inserts a pending booking and then attempts automatic assignment. A
// failed assignment does not fail the creation; the message tells the two apart.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (_ *BookingDTO, _ string, err error) {
	ctx, span := startSpan(ctx, "BookingService.CreateBooking", attribute.String("service_type", req.ServiceType))
	defer func() { endSpan(span, err) }()

	customerID, err := parseID("customer_id", req.CustomerID)
	if err != nil {
		return nil, "", err
	}
	serviceType, err := bookingDomain.ParseServiceType(req.ServiceType)
	if err != nil {
		return nil, "", domain.NewValidationError(err.Error())
	}

	var (
		bk      *bookingDomain.Booking
		created []*eventDomain.BookingEvent
	)
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Customers().FindByID(ctx, customerID); err != nil {
			return err
		}

		var err error
		bk, err = bookingDomain.NewBooking(customerID, serviceType, req.ScheduledAt, req.Address, req.Notes, s.clock.Now())
		if err != nil {
			return err
		}
		if err := tx.Bookings().Save(ctx, bk); err != nil {
			return err
		}

		evt, err := s.recorder.Record(ctx, tx.Events(), bk.ID(), eventDomain.TypeBookingCreated,
			nil, eventDomain.StatusPtr(bookingDomain.StatusPending),
			eventDomain.Actor{Type: eventDomain.ActorCustomer, ID: customerID.String()},
			nil,
		)
		if err != nil {
			return err
		}
		created = append(created, evt)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	s.recorder.Publish(ctx, created)

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("customer_id", customerID.String()),
		zap.String("service_type", string(serviceType)),
	)

	message := MsgCreatedAwaiting
	result, assignErr := s.assign(ctx, bk.ID(), nil, "")
	switch {
	case assignErr != nil:
		s.logger.Warn("auto-assignment failed",
			zap.String("booking_id", bk.ID().String()),
			zap.Error(assignErr),
		)
	case result.Outcome == OutcomeNoProvider:
		s.logger.Info("no provider available for booking",
			zap.String("booking_id", bk.ID().String()),
			zap.String("service_type", string(serviceType)),
		)
	default:
		message = MsgCreatedAndAssigned
	}

	view, err := s.store.Bookings().FindView(ctx, bk.ID())
	if err != nil {
		return nil, "", err
	}
	dto := toBookingDTO(view)
	return &dto, message, nil
}

// AssignProvider assigns explicitProviderID, or picks an available provider when it
// is empty.
func (s *BookingService) AssignProvider(ctx context.Context, bookingID uuid.UUID, explicitProviderID, actorID string) (_ *BookingDTO, _ string, err error) {
	ctx, span := startSpan(ctx, "BookingService.AssignProvider",
		attribute.String("booking_id", bookingID.String()),
		attribute.Bool("manual", explicitProviderID != ""),
	)
	defer func() { endSpan(span, err) }()

	var explicit *uuid.UUID
	if explicitProviderID != "" {
		id, err := parseID("provider_id", explicitProviderID)
		if err != nil {
			return nil, "", err
		}
		explicit = &id
	}

	result, err := s.assign(ctx, bookingID, explicit, actorID)
	if err != nil {
		return nil, "", err
	}

	var message string
	switch result.Outcome {
	case OutcomeNoProvider:
		view, err := s.store.Bookings().FindView(ctx, bookingID)
		if err != nil {
			return nil, "", err
		}
		return nil, "", domain.NewNoAvailableProviderError(string(view.ServiceType))
	case OutcomeManual:
		message = MsgManuallyAssigned
	case OutcomeAuto:
		message = MsgAutoAssigned
	}

	s.logger.Info("provider assigned",
		zap.String("booking_id", bookingID.String()),
		zap.String("provider_id", result.Provider.ID().String()),
		zap.String("outcome", string(result.Outcome)),
	)

	view, err := s.store.Bookings().FindView(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	dto := toBookingDTO(view)
	return &dto, message, nil
}

// assign runs the assignment engine in its own transaction and publishes what it recorded.
func (s *BookingService) assign(ctx context.Context, bookingID uuid.UUID, explicit *uuid.UUID, actorID string) (*AssignResult, error) {
	var result *AssignResult
	err := s.store.InTx(ctx, func(tx store.Store) error {
		bk, err := tx.Bookings().FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		result, err = s.engine.Assign(ctx, tx, bk, explicit, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Publish(ctx, result.Events)
	return result, nil
}

// UpdateBooking applies a status change and/or direct field updates to a booking.
//
// A non-admin status change must follow the transition table. Rejections and no-shows
// below the retry ceiling are recycled to pending with the provider cleared. Every
// status change is recorded; updates that only touch provider or notes are not.
func (s *BookingService) UpdateBooking(
	ctx context.Context,
	bookingID uuid.UUID,
	req UpdateBookingRequest,
	actor eventDomain.Actor,
	isAdmin bool,
) (_ *BookingDTO, err error) {
	ctx, span := startSpan(ctx, "BookingService.UpdateBooking",
		attribute.String("booking_id", bookingID.String()),
		attribute.Bool("admin", isAdmin),
	)
	defer func() { endSpan(span, err) }()

	var requested *bookingDomain.BookingStatus
	if req.Status != nil && *req.Status != "" {
		st, err := bookingDomain.ParseBookingStatus(*req.Status)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		requested = &st
	}

	var providerID *uuid.UUID
	clearProvider := false
	if req.ProviderID != nil {
		if strings.TrimSpace(*req.ProviderID) == "" {
			clearProvider = true
		} else {
			id, err := parseID("provider_id", *req.ProviderID)
			if err != nil {
				return nil, err
			}
			providerID = &id
		}
	}

	var recorded []*eventDomain.BookingEvent
	err = s.store.InTx(ctx, func(tx store.Store) error {
		bk, err := tx.Bookings().FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		current := bk.Status()

		statusChange := requested != nil && (*requested != current || isAdmin)
		if !statusChange && req.ProviderID == nil && req.Notes == nil {
			return domain.NewNoOpError()
		}

		now := s.clock.Now()
		if statusChange {
			target := *requested
			if !isAdmin && !bookingDomain.CanTransition(current, target, false) {
				return domain.NewInvalidTransitionError(string(current), string(target))
			}

			var metadata map[string]any
			if isAdmin {
				metadata = map[string]any{"admin_override": true}
			}
			evt, err := s.recorder.Record(ctx, tx.Events(), bk.ID(), eventDomain.PrimaryEventType(target, isAdmin),
				eventDomain.StatusPtr(current), eventDomain.StatusPtr(target), actor, metadata)
			if err != nil {
				return err
			}
			recorded = append(recorded, evt)

			previousProvider := bk.ProviderID()
			decision := s.retry.Decide(target, bk.RetryCount())
			bk.ApplyDecision(decision, now)

			if decision.Recycle {
				var previous any
				if previousProvider != nil {
					previous = previousProvider.String()
				}
				evt, err := s.recorder.Record(ctx, tx.Events(), bk.ID(), eventDomain.TypeRetryTriggered,
					eventDomain.StatusPtr(target), eventDomain.StatusPtr(decision.FinalStatus),
					eventDomain.RetryActor,
					map[string]any{
						"retry_count":       decision.NextRetryCount,
						"previous_provider": previous,
						"reason":            string(decision.Reason),
					},
				)
				if err != nil {
					return err
				}
				recorded = append(recorded, evt)
			}
		}

		switch {
		case clearProvider:
			bk.SetProvider(nil, now)
		case providerID != nil:
			if _, err := tx.Providers().FindByID(ctx, *providerID); err != nil {
				return err
			}
			bk.SetProvider(providerID, now)
		}
		if req.Notes != nil {
			bk.SetNotes(*req.Notes, now)
		}

		bk.IncrementVersion()
		return tx.Bookings().Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Publish(ctx, recorded)

	s.logger.Info("booking updated",
		zap.String("booking_id", bookingID.String()),
		zap.String("actor_type", string(actor.Type)),
		zap.String("actor_id", actor.ID),
		zap.Bool("admin", isAdmin),
		zap.Int("events", len(recorded)),
	)

	view, err := s.store.Bookings().FindView(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(view)
	return &dto, nil
}

// GetBooking retrieves a booking with its event history, oldest first.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDetailDTO, error) {
	view, err := s.store.Bookings().FindView(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	events, err := s.store.Events().FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	detail := &BookingDetailDTO{
		BookingDTO: toBookingDTO(view),
		Events:     make([]EventDTO, len(events)),
	}
	for i, e := range events {
		detail.Events[i] = toEventDTO(e)
	}
	return detail, nil
}

// ListBookings returns bookings matching the query, newest first.
func (s *BookingService) ListBookings(ctx context.Context, q ListBookingsQuery) ([]BookingDTO, error) {
	var filter bookingDomain.ListFilter
	if q.CustomerID != "" {
		id, err := parseID("customer_id", q.CustomerID)
		if err != nil {
			return nil, err
		}
		filter.CustomerID = &id
	}
	if q.ProviderID != "" {
		id, err := parseID("provider_id", q.ProviderID)
		if err != nil {
			return nil, err
		}
		filter.ProviderID = &id
	}
	if q.Status != "" {
		st, err := bookingDomain.ParseBookingStatus(q.Status)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		filter.Status = &st
	}

	views, err := s.store.Bookings().ListViews(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(views))
	for i, v := range views {
		dtos[i] = toBookingDTO(v)
	}
	return dtos, nil
}

// GetBookingStats returns aggregate booking statistics (admin). Every status is
// present, zero when unused.
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.store.Bookings().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	stats := &BookingStatsDTO{ByStatus: make(map[string]int64, len(bookingDomain.AllStatuses))}
	for _, st := range bookingDomain.AllStatuses {
		stats.ByStatus[string(st)] = counts[string(st)]
	}
	for _, c := range counts {
		stats.TotalBookings += c
	}
	return stats, nil
}

// --- Helpers ---

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(fmt.Sprintf("invalid %s: %s", field, value))
	}
	return id, nil
}
