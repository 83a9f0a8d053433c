package provider

import (
	"context"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/domain/booking"
)

// ListFilter narrows List. Zero values are ignored.
type ListFilter struct {
	ServiceType   *booking.ServiceType
	AvailableOnly bool
	Email         string
}

// ProviderRepository defines persistence operations for providers.
type ProviderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	// FindAvailable returns available providers offering serviceType.
	FindAvailable(ctx context.Context, serviceType booking.ServiceType) ([]*Provider, error)
	List(ctx context.Context, filter ListFilter) ([]*Provider, error)
	Save(ctx context.Context, provider *Provider) error
	UpdateAvailability(ctx context.Context, provider *Provider) error
}
