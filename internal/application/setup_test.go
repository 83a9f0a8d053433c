package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/kafka"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	eventDomain "github.com/homefix/service-booking/internal/domain/event"
	providerDomain "github.com/homefix/service-booking/internal/domain/provider"
	"github.com/homefix/service-booking/internal/repository"
	"github.com/homefix/service-booking/internal/repository/repotest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type publishedEvent struct {
	Topic string
	Key   string
	Event kafka.CloudEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Event.Type
	}
	return types
}

func firstPicker(candidates []*providerDomain.Provider) *providerDomain.Provider {
	return candidates[0]
}

type testEnv struct {
	store     *repository.GormStore
	clock     *Clock
	publisher *recordingPublisher
	bookings  *BookingService
	providers *ProviderService
	customers *CustomerService
	events    *EventService
	customer  *CustomerDTO
}

func newTestEnv(t *testing.T, enforceManualChecks bool) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	st := repository.NewGormStore(repotest.NewDB(t))
	clock := NewClock()
	publisher := &recordingPublisher{}
	recorder := NewEventRecorder(clock, publisher, logger)
	engine := NewAssignmentEngine(recorder, clock, firstPicker, enforceManualChecks)

	env := &testEnv{
		store:     st,
		clock:     clock,
		publisher: publisher,
		bookings:  NewBookingService(st, engine, recorder, bookingDomain.NewRetryPolicy(3), clock, logger),
		providers: NewProviderService(st, clock, logger),
		customers: NewCustomerService(st, clock, logger),
		events:    NewEventService(st),
	}

	c, err := env.customers.RegisterCustomer(context.Background(), RegisterCustomerRequest{
		Name:  "Sarah Johnson",
		Email: "sarah@example.com",
		Phone: "555-0101",
	})
	require.NoError(t, err)
	env.customer = c
	return env
}

func (env *testEnv) addProvider(t *testing.T, name string, serviceType bookingDomain.ServiceType, available bool) *ProviderDTO {
	t.Helper()
	ctx := context.Background()
	p, err := env.providers.RegisterProvider(ctx, RegisterProviderRequest{
		Name:        name,
		Email:       uuid.NewString() + "@providers.example.com",
		ServiceType: string(serviceType),
	})
	require.NoError(t, err)
	if !available {
		p, err = env.providers.SetAvailability(ctx, p.ID, false)
		require.NoError(t, err)
	}
	return p
}

// seedBooking stores a booking directly in the given state, bypassing the lifecycle.
func (env *testEnv) seedBooking(t *testing.T, status bookingDomain.BookingStatus, providerID *uuid.UUID, retryCount int) uuid.UUID {
	t.Helper()
	now := env.clock.Now()
	bk := bookingDomain.ReconstructBooking(uuid.New(), env.customer.ID, providerID, bookingDomain.ServicePlumbing,
		status, now.Add(24*time.Hour), "42 Harbor Road", "", retryCount, 1, now, now)
	require.NoError(t, env.store.Bookings().Save(context.Background(), bk))
	return bk.ID()
}

func (env *testEnv) history(t *testing.T, bookingID uuid.UUID) []EventDTO {
	t.Helper()
	detail, err := env.bookings.GetBooking(context.Background(), bookingID)
	require.NoError(t, err)
	return detail.Events
}

func (env *testEnv) createRequest(serviceType bookingDomain.ServiceType) CreateBookingRequest {
	return CreateBookingRequest{
		CustomerID:  env.customer.ID.String(),
		ServiceType: string(serviceType),
		ScheduledAt: time.Now().Add(48 * time.Hour).UTC(),
		Address:     "42 Harbor Road",
		Notes:       "ring the bell twice",
	}
}

func strPtr(s string) *string { return &s }

var customerActor = eventDomain.Actor{Type: eventDomain.ActorCustomer, ID: "customer-1"}
var adminActor = eventDomain.Actor{Type: eventDomain.ActorAdmin, ID: "admin-1"}
