package application

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/domain"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	eventDomain "github.com/homefix/service-booking/internal/domain/event"
	providerDomain "github.com/homefix/service-booking/internal/domain/provider"
	"github.com/homefix/service-booking/internal/domain/store"
)

// DefaultAdminActorID attributes manual assignments made without an actor ID.
const DefaultAdminActorID = "admin"

const noProviderReason = "No available providers"

// ProviderPicker chooses one provider from a non-empty candidate list.
type ProviderPicker func(candidates []*providerDomain.Provider) *providerDomain.Provider

// RandomPicker picks uniformly at random.
func RandomPicker(candidates []*providerDomain.Provider) *providerDomain.Provider {
	return candidates[rand.IntN(len(candidates))]
}

// AssignOutcome tells how an assignment attempt ended.
type AssignOutcome string

const (
	OutcomeManual     AssignOutcome = "manual"
	OutcomeAuto       AssignOutcome = "auto"
	OutcomeNoProvider AssignOutcome = "no_provider"
)

// AssignResult is what AssignmentEngine.Assign did inside the transaction.
type AssignResult struct {
	Outcome  AssignOutcome
	Provider *providerDomain.Provider
	Events   []*eventDomain.BookingEvent
}

// AssignmentEngine selects a provider for a booking and moves it to assigned.
type AssignmentEngine struct {
	recorder            *EventRecorder
	clock               *Clock
	pick                ProviderPicker
	enforceManualChecks bool
}

// NewAssignmentEngine creates an engine. A nil picker means RandomPicker. With
// enforceManualChecks set, manual assignments must name an available provider of the
// booking's service type.
func NewAssignmentEngine(recorder *EventRecorder, clock *Clock, pick ProviderPicker, enforceManualChecks bool) *AssignmentEngine {
	if pick == nil {
		pick = RandomPicker
	}
	return &AssignmentEngine{
		recorder:            recorder,
		clock:               clock,
		pick:                pick,
		enforceManualChecks: enforceManualChecks,
	}
}

// Assign runs within tx against a booking already loaded with a row lock. When no
// provider is available it records assignment_failed and returns OutcomeNoProvider
// with a nil error, so the caller can commit the event before reporting the failure.
func (e *AssignmentEngine) Assign(
	ctx context.Context,
	tx store.Store,
	bk *bookingDomain.Booking,
	explicitProviderID *uuid.UUID,
	actorID string,
) (*AssignResult, error) {
	current := bk.Status()
	if !current.IsAssignable() {
		return nil, domain.NewConflictError(fmt.Sprintf("Booking cannot be assigned in status '%s'", current))
	}

	var (
		chosen  *providerDomain.Provider
		actor   eventDomain.Actor
		outcome AssignOutcome
		err     error
	)

	if explicitProviderID != nil {
		chosen, err = e.manualProvider(ctx, tx, bk, *explicitProviderID)
		if err != nil {
			return nil, err
		}
		if actorID == "" {
			actorID = DefaultAdminActorID
		}
		actor = eventDomain.Actor{Type: eventDomain.ActorAdmin, ID: actorID}
		outcome = OutcomeManual
	} else {
		candidates, err := tx.Providers().FindAvailable(ctx, bk.ServiceType())
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			evt, err := e.recorder.Record(ctx, tx.Events(), bk.ID(), eventDomain.TypeAssignmentFailed,
				eventDomain.StatusPtr(current), eventDomain.StatusPtr(current),
				eventDomain.AutoAssignActor,
				map[string]any{
					"reason":       noProviderReason,
					"service_type": string(bk.ServiceType()),
				},
			)
			if err != nil {
				return nil, err
			}
			return &AssignResult{Outcome: OutcomeNoProvider, Events: []*eventDomain.BookingEvent{evt}}, nil
		}
		chosen = e.pick(candidates)
		actor = eventDomain.AutoAssignActor
		outcome = OutcomeAuto
	}

	if err := bk.AssignProvider(chosen.ID(), e.clock.Now()); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := tx.Bookings().Update(ctx, bk); err != nil {
		return nil, err
	}

	evt, err := e.recorder.Record(ctx, tx.Events(), bk.ID(), eventDomain.TypeProviderAssigned,
		eventDomain.StatusPtr(current), eventDomain.StatusPtr(bookingDomain.StatusAssigned),
		actor,
		map[string]any{
			"provider_id": chosen.ID().String(),
			"manual":      outcome == OutcomeManual,
		},
	)
	if err != nil {
		return nil, err
	}

	return &AssignResult{Outcome: outcome, Provider: chosen, Events: []*eventDomain.BookingEvent{evt}}, nil
}

func (e *AssignmentEngine) manualProvider(ctx context.Context, tx store.Store, bk *bookingDomain.Booking, providerID uuid.UUID) (*providerDomain.Provider, error) {
	p, err := tx.Providers().FindByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if !e.enforceManualChecks {
		return p, nil
	}
	if !p.IsAvailable() {
		return nil, domain.NewConflictError(fmt.Sprintf("provider %s is not available", p.Name()))
	}
	if !p.Offers(bk.ServiceType()) {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"provider %s offers %s, booking requires %s", p.Name(), p.ServiceType(), bk.ServiceType()))
	}
	return p, nil
}
