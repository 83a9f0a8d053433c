package application

import (
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	customerDomain "github.com/homefix/service-booking/internal/domain/customer"
	eventDomain "github.com/homefix/service-booking/internal/domain/event"
	providerDomain "github.com/homefix/service-booking/internal/domain/provider"
)

// BookingDTO is the response representation of a booking with display fields.
type BookingDTO struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	ProviderID    *uuid.UUID `json:"provider_id"`
	ServiceType   string     `json:"service_type"`
	Status        string     `json:"status"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Address       string     `json:"address"`
	Notes         string     `json:"notes,omitempty"`
	RetryCount    int        `json:"retry_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CustomerName  string     `json:"customer_name,omitempty"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	CustomerPhone string     `json:"customer_phone,omitempty"`
	ProviderName  string     `json:"provider_name,omitempty"`
	ProviderEmail string     `json:"provider_email,omitempty"`
	ProviderPhone string     `json:"provider_phone,omitempty"`
}

// BookingDetailDTO is a booking with its event history, oldest first.
type BookingDetailDTO struct {
	BookingDTO
	Events []EventDTO `json:"events"`
}

// EventDTO is the response and wire representation of a booking event.
type EventDTO struct {
	ID        uuid.UUID      `json:"id"`
	BookingID uuid.UUID      `json:"booking_id"`
	EventType string         `json:"event_type"`
	OldStatus *string        `json:"old_status"`
	NewStatus *string        `json:"new_status"`
	ActorType string         `json:"actor_type"`
	ActorID   string         `json:"actor_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// EventViewDTO is an event with the booking details it refers to.
type EventViewDTO struct {
	EventDTO
	ServiceType  string `json:"service_type"`
	Address      string `json:"address"`
	CustomerName string `json:"customer_name,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// ProviderDTO is the response representation of a provider.
type ProviderDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	ServiceType string    `json:"service_type"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

// CustomerDTO is the response representation of a customer.
type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// --- Conversion Helpers ---

func toBookingDTO(v *bookingDomain.View) BookingDTO {
	return BookingDTO{
		ID:            v.ID,
		CustomerID:    v.CustomerID,
		ProviderID:    v.ProviderID,
		ServiceType:   string(v.ServiceType),
		Status:        string(v.Status),
		ScheduledAt:   v.ScheduledAt,
		Address:       v.Address,
		Notes:         v.Notes,
		RetryCount:    v.RetryCount,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
		CustomerName:  v.CustomerName,
		CustomerEmail: v.CustomerEmail,
		CustomerPhone: v.CustomerPhone,
		ProviderName:  v.ProviderName,
		ProviderEmail: v.ProviderEmail,
		ProviderPhone: v.ProviderPhone,
	}
}

func toEventDTO(e *eventDomain.BookingEvent) EventDTO {
	return EventDTO{
		ID:        e.ID(),
		BookingID: e.BookingID(),
		EventType: string(e.EventType()),
		OldStatus: statusString(e.OldStatus()),
		NewStatus: statusString(e.NewStatus()),
		ActorType: string(e.Actor().Type),
		ActorID:   e.Actor().ID,
		Metadata:  e.Metadata(),
		CreatedAt: e.CreatedAt(),
	}
}

func toEventViewDTO(v *eventDomain.View) EventViewDTO {
	return EventViewDTO{
		EventDTO:     toEventDTO(v.Event),
		ServiceType:  string(v.ServiceType),
		Address:      v.Address,
		CustomerName: v.CustomerName,
		ProviderName: v.ProviderName,
	}
}

func toProviderDTO(p *providerDomain.Provider) ProviderDTO {
	return ProviderDTO{
		ID:          p.ID(),
		Name:        p.Name(),
		Email:       p.Email(),
		Phone:       p.Phone(),
		ServiceType: string(p.ServiceType()),
		IsAvailable: p.IsAvailable(),
		CreatedAt:   p.CreatedAt(),
	}
}

func toCustomerDTO(c *customerDomain.Customer) CustomerDTO {
	return CustomerDTO{
		ID:        c.ID(),
		Name:      c.Name(),
		Email:     c.Email(),
		Phone:     c.Phone(),
		CreatedAt: c.CreatedAt(),
	}
}

func statusString(s *bookingDomain.BookingStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
