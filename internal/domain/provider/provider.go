package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/domain"
	"github.com/homefix/service-booking/internal/domain/booking"
)

// Provider is a service professional offering a single service type.
type Provider struct {
	id          uuid.UUID
	name        string
	email       string
	phone       string
	serviceType booking.ServiceType
	isAvailable bool
	createdAt   time.Time
}

// NewProvider creates a new provider that is available by default.
func NewProvider(name, email, phone string, serviceType booking.ServiceType, now time.Time) (*Provider, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, domain.NewValidationError("provider name is required")
	}
	if email == "" {
		return nil, domain.NewValidationError("provider email is required")
	}
	if !serviceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid service type: %s", serviceType))
	}

	return &Provider{
		id:          uuid.New(),
		name:        name,
		email:       email,
		phone:       strings.TrimSpace(phone),
		serviceType: serviceType,
		isAvailable: true,
		createdAt:   now,
	}, nil
}

// Reconstruct rebuilds a Provider from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	name, email, phone string,
	serviceType booking.ServiceType,
	isAvailable bool,
	createdAt time.Time,
) *Provider {
	return &Provider{
		id:          id,
		name:        name,
		email:       email,
		phone:       phone,
		serviceType: serviceType,
		isAvailable: isAvailable,
		createdAt:   createdAt,
	}
}

// --- Getters ---

func (p *Provider) ID() uuid.UUID                    { return p.id }
func (p *Provider) Name() string                     { return p.name }
func (p *Provider) Email() string                    { return p.email }
func (p *Provider) Phone() string                    { return p.phone }
func (p *Provider) ServiceType() booking.ServiceType { return p.serviceType }
func (p *Provider) IsAvailable() bool                { return p.isAvailable }
func (p *Provider) CreatedAt() time.Time             { return p.createdAt }

// --- Behavior ---

// SetAvailability toggles whether the provider accepts new assignments.
func (p *Provider) SetAvailability(available bool) {
	p.isAvailable = available
}

// Offers reports whether the provider can serve the given service type.
func (p *Provider) Offers(serviceType booking.ServiceType) bool {
	return p.serviceType == serviceType
}
