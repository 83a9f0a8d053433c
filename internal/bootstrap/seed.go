// Package bootstrap fills an empty database with demo customers, providers and bookings.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/application"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	customerDomain "github.com/homefix/service-booking/internal/domain/customer"
	eventDomain "github.com/homefix/service-booking/internal/domain/event"
	providerDomain "github.com/homefix/service-booking/internal/domain/provider"
	"github.com/homefix/service-booking/internal/domain/store"
	"go.uber.org/zap"
)

type seedCustomer struct {
	name, email, phone string
}

type seedProvider struct {
	name, email, phone string
	serviceType        bookingDomain.ServiceType
	available          bool
}

var customers = []seedCustomer{
	{"John Smith", "john.smith@email.com", "+1-555-0101"},
	{"Sarah Johnson", "sarah.j@email.com", "+1-555-0102"},
	{"Michael Brown", "mike.brown@email.com", "+1-555-0103"},
	{"Emily Davis", "emily.d@email.com", "+1-555-0104"},
	{"David Wilson", "david.w@email.com", "+1-555-0105"},
}

var providers = []seedProvider{
	{"CleanPro Services", "cleanpro@services.com", "+1-555-1001", bookingDomain.ServiceCleaning, true},
	{"SparkleClean Co", "sparkle@clean.com", "+1-555-1002", bookingDomain.ServiceCleaning, true},
	{"Mike's Plumbing", "mike@plumbing.com", "+1-555-2001", bookingDomain.ServicePlumbing, true},
	{"QuickFix Plumbers", "quick@plumbers.com", "+1-555-2002", bookingDomain.ServicePlumbing, false},
	{"PowerUp Electricians", "power@electric.com", "+1-555-3001", bookingDomain.ServiceElectrical, true},
	{"BrightSpark Electric", "bright@spark.com", "+1-555-3002", bookingDomain.ServiceElectrical, true},
	{"WoodCraft Carpentry", "wood@craft.com", "+1-555-4001", bookingDomain.ServiceCarpentry, true},
	{"ColorMaster Painters", "color@master.com", "+1-555-5001", bookingDomain.ServicePainting, true},
	{"GreenThumb Gardens", "green@thumb.com", "+1-555-6001", bookingDomain.ServiceGardening, true},
	{"FixIt Appliances", "fixit@appliances.com", "+1-555-7001", bookingDomain.ServiceApplianceRepair, true},
}

type seedBooking struct {
	customer    int
	provider    int // index into providers, -1 for none
	serviceType bookingDomain.ServiceType
	status      bookingDomain.BookingStatus
	offset      time.Duration
	address     string
	notes       string
}

var bookings = []seedBooking{
	{0, 0, bookingDomain.ServiceCleaning, bookingDomain.StatusCompleted, -48 * time.Hour,
		"123 Main St, Apt 4B, New York, NY 10001", "Deep cleaning requested"},
	{1, 1, bookingDomain.ServiceCleaning, bookingDomain.StatusInProgress, 0,
		"456 Oak Ave, Brooklyn, NY 11201", "Leaky faucet in kitchen"},
	{2, -1, bookingDomain.ServiceElectrical, bookingDomain.StatusPending, 24 * time.Hour,
		"789 Pine Rd, Queens, NY 11375", "Install new ceiling fan"},
}

// Seed inserts the demo data in one transaction when the customers table is empty.
// It reports whether anything was written.
func Seed(ctx context.Context, st store.Store, clock *application.Clock, log *zap.Logger) (bool, error) {
	existing, err := st.Customers().List(ctx, "")
	if err != nil {
		return false, fmt.Errorf("failed to check existing customers: %w", err)
	}
	if len(existing) > 0 {
		log.Info("database already seeded, skipping")
		return false, nil
	}

	err = st.InTx(ctx, func(tx store.Store) error {
		customerIDs := make([]uuid.UUID, 0, len(customers))
		for _, sc := range customers {
			c, err := customerDomain.NewCustomer(sc.name, sc.email, sc.phone, clock.Now())
			if err != nil {
				return err
			}
			if err := tx.Customers().Save(ctx, c); err != nil {
				return err
			}
			customerIDs = append(customerIDs, c.ID())
		}

		providerIDs := make([]uuid.UUID, 0, len(providers))
		for _, sp := range providers {
			p, err := providerDomain.NewProvider(sp.name, sp.email, sp.phone, sp.serviceType, clock.Now())
			if err != nil {
				return err
			}
			p.SetAvailability(sp.available)
			if err := tx.Providers().Save(ctx, p); err != nil {
				return err
			}
			providerIDs = append(providerIDs, p.ID())
		}

		for _, sb := range bookings {
			var providerID *uuid.UUID
			if sb.provider >= 0 {
				providerID = &providerIDs[sb.provider]
			}
			if err := seedHistory(ctx, tx, clock, customerIDs[sb.customer], providerID, sb); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed database: %w", err)
	}

	log.Info("database seeded",
		zap.Int("customers", len(customers)),
		zap.Int("providers", len(providers)),
		zap.Int("bookings", len(bookings)),
	)
	return true, nil
}

type seedEvent struct {
	eventType eventDomain.EventType
	from, to  *bookingDomain.BookingStatus
	actor     eventDomain.Actor
	metadata  map[string]any
}

var happyPath = []bookingDomain.BookingStatus{
	bookingDomain.StatusPending,
	bookingDomain.StatusAssigned,
	bookingDomain.StatusAccepted,
	bookingDomain.StatusInProgress,
	bookingDomain.StatusCompleted,
}

// seedHistory stores one booking in its final state together with the events that
// would have led there.
func seedHistory(
	ctx context.Context,
	tx store.Store,
	clock *application.Clock,
	customerID uuid.UUID,
	providerID *uuid.UUID,
	sb seedBooking,
) error {
	now := clock.Now()
	bk := bookingDomain.ReconstructBooking(uuid.New(), customerID, providerID, sb.serviceType, sb.status,
		now.Add(sb.offset), sb.address, sb.notes, 0, 1, now, now)
	if err := tx.Bookings().Save(ctx, bk); err != nil {
		return err
	}

	steps := []seedEvent{{
		eventType: eventDomain.TypeBookingCreated,
		to:        eventDomain.StatusPtr(bookingDomain.StatusPending),
		actor:     eventDomain.Actor{Type: eventDomain.ActorCustomer, ID: customerID.String()},
	}}

	if providerID != nil {
		provider := eventDomain.Actor{Type: eventDomain.ActorProvider, ID: providerID.String()}
		for i := 1; i < len(happyPath); i++ {
			step := seedEvent{
				eventType: eventDomain.TypeStatusChanged,
				from:      eventDomain.StatusPtr(happyPath[i-1]),
				to:        eventDomain.StatusPtr(happyPath[i]),
				actor:     provider,
			}
			switch happyPath[i] {
			case bookingDomain.StatusAssigned:
				step.eventType = eventDomain.TypeProviderAssigned
				step.actor = eventDomain.AutoAssignActor
				step.metadata = map[string]any{"provider_id": providerID.String(), "manual": false}
			case bookingDomain.StatusAccepted:
				step.eventType = eventDomain.TypeProviderAccepted
			}
			steps = append(steps, step)
			if happyPath[i] == sb.status {
				break
			}
		}
	}

	for _, step := range steps {
		evt, err := eventDomain.NewBookingEvent(bk.ID(), step.eventType, step.from, step.to, step.actor, step.metadata, clock.Now())
		if err != nil {
			return err
		}
		if err := tx.Events().Append(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}
