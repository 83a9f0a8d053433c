package application

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/domain"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	eventDomain "github.com/homefix/service-booking/internal/domain/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBooking_AutoAssignsAvailableProvider(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.addProvider(t, "Flow Masters", bookingDomain.ServicePlumbing, true)

	bk, msg, err := env.bookings.CreateBooking(context.Background(), env.createRequest(bookingDomain.ServicePlumbing))
	require.NoError(t, err)

	assert.Equal(t, MsgCreatedAndAssigned, msg)
	assert.Equal(t, "assigned", bk.Status)
	require.NotNil(t, bk.ProviderID)
	assert.Equal(t, p.ID, *bk.ProviderID)
	assert.Equal(t, "Sarah Johnson", bk.CustomerName)
	assert.Equal(t, "Flow Masters", bk.ProviderName)

	events := env.history(t, bk.ID)
	require.Len(t, events, 2)
	assert.Equal(t, "booking_created", events[0].EventType)
	assert.Equal(t, "customer", events[0].ActorType)
	assert.Equal(t, env.customer.ID.String(), events[0].ActorID)
	assert.Equal(t, "provider_assigned", events[1].EventType)
	assert.Equal(t, "system", events[1].ActorType)
	assert.Equal(t, "auto-assign", events[1].ActorID)
	assert.Equal(t, false, events[1].Metadata["manual"])
	assert.Equal(t, p.ID.String(), events[1].Metadata["provider_id"])

	assert.Equal(t, []string{"booking.booking_created", "booking.provider_assigned"}, env.publisher.types())
	assert.Equal(t, TopicBookingEvents, env.publisher.events[0].Topic)
	assert.Equal(t, bk.ID.String(), env.publisher.events[0].Key)
}

func TestCreateBooking_NoProviderLeavesPending(t *testing.T) {
	env := newTestEnv(t, false)
	env.addProvider(t, "Spark Electric", bookingDomain.ServiceElectrical, true)
	env.addProvider(t, "QuickFix Plumbers", bookingDomain.ServicePlumbing, false)

	bk, msg, err := env.bookings.CreateBooking(context.Background(), env.createRequest(bookingDomain.ServicePlumbing))
	require.NoError(t, err)

	assert.Equal(t, MsgCreatedAwaiting, msg)
	assert.Equal(t, "pending", bk.Status)
	assert.Nil(t, bk.ProviderID)

	events := env.history(t, bk.ID)
	require.Len(t, events, 2)
	failed := events[1]
	assert.Equal(t, "assignment_failed", failed.EventType)
	assert.Equal(t, "pending", *failed.OldStatus)
	assert.Equal(t, "pending", *failed.NewStatus)
	assert.Equal(t, "No available providers", failed.Metadata["reason"])
	assert.Equal(t, "plumbing", failed.Metadata["service_type"])
}

func TestCreateBooking_UnknownCustomerWritesNothing(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	req := env.createRequest(bookingDomain.ServiceCleaning)
	req.CustomerID = uuid.NewString()

	_, _, err := env.bookings.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bookings, err := env.bookings.ListBookings(ctx, ListBookingsQuery{})
	require.NoError(t, err)
	assert.Empty(t, bookings)
	events, err := env.events.ListEvents(ctx, ListEventsQuery{})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Empty(t, env.publisher.types())
}

func TestCreateBooking_Validation(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	req := env.createRequest("roofing")
	_, _, err := env.bookings.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, domain.ErrValidation)

	req = env.createRequest(bookingDomain.ServiceCleaning)
	req.CustomerID = "not-a-uuid"
	_, _, err = env.bookings.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, domain.ErrValidation)

	req = env.createRequest(bookingDomain.ServiceCleaning)
	req.Address = " "
	_, _, err = env.bookings.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateBooking_NonAdminFollowsTransitionTable(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	p := env.addProvider(t, "Flow Masters", bookingDomain.ServicePlumbing, true)

	for _, from := range bookingDomain.AllStatuses {
		for _, to := range bookingDomain.AllStatuses {
			if from == to {
				continue
			}
			id := env.seedBooking(t, from, &p.ID, 0)

			_, err := env.bookings.UpdateBooking(ctx, id, UpdateBookingRequest{Status: strPtr(string(to))}, customerActor, false)
			if bookingDomain.CanTransition(from, to, false) {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s", from, to)
				assert.Contains(t, err.Error(), string(from))
				assert.Contains(t, err.Error(), string(to))
			}
		}
	}
}

func TestUpdateBooking_AdminOverridesEveryPair(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	for _, from := range bookingDomain.AllStatuses {
		for _, to := range bookingDomain.AllStatuses {
			id := env.seedBooking(t, from, nil, 3)

			_, err := env.bookings.UpdateBooking(ctx, id, UpdateBookingRequest{Status: strPtr(string(to))}, adminActor, true)
			require.NoError(t, err, "%s -> %s", from, to)

			events := env.history(t, id)
			require.Len(t, events, 1, "%s -> %s", from, to)
			assert.Equal(t, string(eventDomain.PrimaryEventType(to, true)), events[0].EventType)
			assert.Equal(t, true, events[0].Metadata["admin_override"])
			assert.Equal(t, string(from), *events[0].OldStatus)
			assert.Equal(t, string(to), *events[0].NewStatus)
		}
	}
}

func TestUpdateBooking_AdminCompletedToPending(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.seedBooking(t, bookingDomain.StatusCompleted, nil, 0)

	bk, err := env.bookings.UpdateBooking(context.Background(), id, UpdateBookingRequest{Status: strPtr("pending")}, adminActor, true)
	require.NoError(t, err)
	assert.Equal(t, "pending", bk.Status)

	events := env.history(t, id)
	require.Len(t, events, 1)
	assert.Equal(t, "manual_override", events[0].EventType)
	assert.Equal(t, "admin", events[0].ActorType)
	assert.Equal(t, "admin-1", events[0].ActorID)
}

func TestUpdateBooking_RejectionRecyclesBelowCeiling(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.addProvider(t, "Flow Masters", bookingDomain.ServicePlumbing, true)
	id := env.seedBooking(t, bookingDomain.StatusAssigned, &p.ID, 0)

	providerActor := eventDomain.Actor{Type: eventDomain.ActorProvider, ID: p.ID.String()}
	bk, err := env.bookings.UpdateBooking(context.Background(), id, UpdateBookingRequest{Status: strPtr("rejected")}, providerActor, false)
	require.NoError(t, err)

	assert.Equal(t, "pending", bk.Status)
	assert.Nil(t, bk.ProviderID)
	assert.Equal(t, 1, bk.RetryCount)

	events := env.history(t, id)
	require.Len(t, events, 2)
	assert.Equal(t, "status_changed", events[0].EventType)
	assert.Equal(t, "assigned", *events[0].OldStatus)
	assert.Equal(t, "rejected", *events[0].NewStatus)
	assert.Equal(t, "provider", events[0].ActorType)

	retry := events[1]
	assert.Equal(t, "retry_triggered", retry.EventType)
	assert.Equal(t, "rejected", *retry.OldStatus)
	assert.Equal(t, "pending", *retry.NewStatus)
	assert.Equal(t, "system", retry.ActorType)
	assert.Equal(t, "retry-logic", retry.ActorID)
	assert.Equal(t, int64(1), retry.Metadata["retry_count"])
	assert.Equal(t, p.ID.String(), retry.Metadata["previous_provider"])
	assert.Equal(t, "rejected", retry.Metadata["reason"])
}

func TestUpdateBooking_NoShowAtCeilingSticks(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.addProvider(t, "Flow Masters", bookingDomain.ServicePlumbing, true)
	id := env.seedBooking(t, bookingDomain.StatusAccepted, &p.ID, 3)

	bk, err := env.bookings.UpdateBooking(context.Background(), id, UpdateBookingRequest{Status: strPtr("no_show")}, customerActor, false)
	require.NoError(t, err)

	assert.Equal(t, "no_show", bk.Status)
	assert.Equal(t, 3, bk.RetryCount)
	require.NotNil(t, bk.ProviderID)
	assert.Equal(t, p.ID, *bk.ProviderID)

	events := env.history(t, id)
	require.Len(t, events, 1)
	assert.Equal(t, "no_show_reported", events[0].EventType)
}

func TestUpdateBooking_CancelRecordsCancellation(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.seedBooking(t, bookingDomain.StatusPending, nil, 0)

	_, err := env.bookings.UpdateBooking(context.Background(), id, UpdateBookingRequest{Status: strPtr("cancelled")}, customerActor, false)
	require.NoError(t, err)

	events := env.history(t, id)
	require.Len(t, events, 1)
	assert.Equal(t, "booking_cancelled", events[0].EventType)
	assert.Equal(t, []string{"booking.booking_cancelled"}, env.publisher.types())
}

func TestUpdateBooking_NoOp(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	id := env.seedBooking(t, bookingDomain.StatusPending, nil, 0)

	_, err := env.bookings.UpdateBooking(ctx, id, UpdateBookingRequest{}, customerActor, false)
	assert.ErrorIs(t, err, domain.ErrNoOp)

	_, err = env.bookings.UpdateBooking(ctx, id, UpdateBookingRequest{Status: strPtr("pending")}, customerActor, false)
	assert.ErrorIs(t, err, domain.ErrNoOp)

	bk, err := env.bookings.UpdateBooking(ctx, id, UpdateBookingRequest{Status: strPtr("pending"), Notes: strPtr("gate code 1234")}, customerActor, false)
	require.NoError(t, err)
	assert.Equal(t, "gate code 1234", bk.Notes)
	assert.Empty(t, env.history(t, id))
}

func TestUpdateBooking_SideChannelProvider(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	p := env.addProvider(t, "Flow Masters", bookingDomain.ServicePlumbing, true)
	id := env.seedBooking(t, bookingDomain.StatusPending, nil, 0)

	bk, err := env.bookings.UpdateBooking(ctx, id, UpdateBookingRequest{ProviderID: strPtr(p.ID.String())}, adminActor, false)
	require.NoError(t, err)
	require.NotNil(t, bk.ProviderID)
	assert.Equal(t, p.ID, *bk.ProviderID)
	assert.Equal(t, "pending", bk.Status)

	_, err = env.bookings.UpdateBooking(ctx, id, UpdateBookingRequest{ProviderID: strPtr(uuid.NewString())}, adminActor, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.bookings.UpdateBooking(ctx, id, UpdateBookingRequest{ProviderID: strPtr("bogus")}, adminActor, false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bk, err = env.bookings.UpdateBooking(ctx, id, UpdateBookingRequest{ProviderID: strPtr("")}, adminActor, false)
	require.NoError(t, err)
	assert.Nil(t, bk.ProviderID)

	assert.Empty(t, env.history(t, id))
}

func TestUpdateBooking_Errors(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	_, err := env.bookings.UpdateBooking(ctx, uuid.New(), UpdateBookingRequest{Status: strPtr("cancelled")}, customerActor, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	id := env.seedBooking(t, bookingDomain.StatusPending, nil, 0)
	_, err = env.bookings.UpdateBooking(ctx, id, UpdateBookingRequest{Status: strPtr("delivered")}, customerActor, false)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingLifecycle_EventChain(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	p := env.addProvider(t, "Flow Masters", bookingDomain.ServicePlumbing, true)
	providerActor := eventDomain.Actor{Type: eventDomain.ActorProvider, ID: p.ID.String()}

	bk, _, err := env.bookings.CreateBooking(ctx, env.createRequest(bookingDomain.ServicePlumbing))
	require.NoError(t, err)

	_, err = env.bookings.UpdateBooking(ctx, bk.ID, UpdateBookingRequest{Status: strPtr("rejected")}, providerActor, false)
	require.NoError(t, err)
	_, _, err = env.bookings.AssignProvider(ctx, bk.ID, "", "")
	require.NoError(t, err)
	for _, next := range []string{"accepted", "in_progress", "completed"} {
		_, err = env.bookings.UpdateBooking(ctx, bk.ID, UpdateBookingRequest{Status: strPtr(next)}, providerActor, false)
		require.NoError(t, err, next)
	}

	events := env.history(t, bk.ID)
	require.Len(t, events, 8)
	assert.Nil(t, events[0].OldStatus)
	assert.Equal(t, "pending", *events[0].NewStatus)
	for i := 1; i < len(events); i++ {
		require.NotNil(t, events[i].OldStatus, events[i].EventType)
		assert.Equal(t, *events[i-1].NewStatus, *events[i].OldStatus, "event %d (%s)", i, events[i].EventType)
		assert.True(t, events[i].CreatedAt.After(events[i-1].CreatedAt))
	}
	assert.Equal(t, "completed", *events[len(events)-1].NewStatus)
}

func TestAssignProvider_ManualIsPermissiveByDefault(t *testing.T) {
	env := newTestEnv(t, false)
	busy := env.addProvider(t, "Spark Electric", bookingDomain.ServiceElectrical, false)
	id := env.seedBooking(t, bookingDomain.StatusRejected, nil, 1)

	bk, msg, err := env.bookings.AssignProvider(context.Background(), id, busy.ID.String(), "")
	require.NoError(t, err)
	assert.Equal(t, MsgManuallyAssigned, msg)
	assert.Equal(t, "assigned", bk.Status)
	assert.Equal(t, busy.ID, *bk.ProviderID)

	events := env.history(t, id)
	require.Len(t, events, 1)
	assert.Equal(t, "provider_assigned", events[0].EventType)
	assert.Equal(t, "rejected", *events[0].OldStatus)
	assert.Equal(t, "admin", events[0].ActorType)
	assert.Equal(t, DefaultAdminActorID, events[0].ActorID)
	assert.Equal(t, true, events[0].Metadata["manual"])
}

func TestAssignProvider_EnforcedManualChecks(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	busy := env.addProvider(t, "QuickFix Plumbers", bookingDomain.ServicePlumbing, false)
	electrician := env.addProvider(t, "Spark Electric", bookingDomain.ServiceElectrical, true)
	id := env.seedBooking(t, bookingDomain.StatusPending, nil, 0)

	_, _, err := env.bookings.AssignProvider(ctx, id, busy.ID.String(), "ops-7")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, _, err = env.bookings.AssignProvider(ctx, id, electrician.ID.String(), "ops-7")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = env.bookings.AssignProvider(ctx, id, uuid.NewString(), "ops-7")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, env.history(t, id))
}

func TestAssignProvider_NoAvailableProvider(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.seedBooking(t, bookingDomain.StatusNoShow, nil, 2)

	_, _, err := env.bookings.AssignProvider(context.Background(), id, "", "")
	assert.ErrorIs(t, err, domain.ErrNoAvailableProvider)

	detail, err := env.bookings.GetBooking(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "no_show", detail.Status)
	require.Len(t, detail.Events, 1)
	assert.Equal(t, "assignment_failed", detail.Events[0].EventType)
}

func TestAssignProvider_NotAssignable(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.addProvider(t, "Flow Masters", bookingDomain.ServicePlumbing, true)
	id := env.seedBooking(t, bookingDomain.StatusAccepted, &p.ID, 0)

	_, _, err := env.bookings.AssignProvider(context.Background(), id, "", "")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "'accepted'")
	assert.Empty(t, env.history(t, id))
}

// The SQLite test database has a single connection, so the two requests run one
// after the other here; integration_test.go races them on PostgreSQL.
func TestAssignProvider_SerializedRequestsHaveOneWinner(t *testing.T) {
	env := newTestEnv(t, false)
	manual := env.addProvider(t, "Flow Masters", bookingDomain.ServicePlumbing, true)
	env.addProvider(t, "Pipe Pros", bookingDomain.ServicePlumbing, true)
	id := env.seedBooking(t, bookingDomain.StatusPending, nil, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _, errs[0] = env.bookings.AssignProvider(context.Background(), id, manual.ID.String(), "admin-1")
	}()
	go func() {
		defer wg.Done()
		_, _, errs[1] = env.bookings.AssignProvider(context.Background(), id, "", "")
	}()
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case domain.CodeOf(err) == domain.CodeConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	events := env.history(t, id)
	require.Len(t, events, 1)
	assert.Equal(t, "provider_assigned", events[0].EventType)
}

func TestGetBookingStats(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedBooking(t, bookingDomain.StatusPending, nil, 0)
	env.seedBooking(t, bookingDomain.StatusPending, nil, 0)
	env.seedBooking(t, bookingDomain.StatusCompleted, nil, 0)

	stats, err := env.bookings.GetBookingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBookings)
	assert.Equal(t, int64(2), stats.ByStatus["pending"])
	assert.Equal(t, int64(1), stats.ByStatus["completed"])
	assert.Contains(t, stats.ByStatus, "no_show")
	assert.Len(t, stats.ByStatus, len(bookingDomain.AllStatuses))
}

func TestListBookings_Filters(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	first := env.seedBooking(t, bookingDomain.StatusPending, nil, 0)
	second := env.seedBooking(t, bookingDomain.StatusCancelled, nil, 0)

	all, err := env.bookings.ListBookings(ctx, ListBookingsQuery{CustomerID: env.customer.ID.String()})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second, all[0].ID)
	assert.Equal(t, first, all[1].ID)

	cancelled, err := env.bookings.ListBookings(ctx, ListBookingsQuery{Status: "cancelled"})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, second, cancelled[0].ID)

	_, err = env.bookings.ListBookings(ctx, ListBookingsQuery{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
