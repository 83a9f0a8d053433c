package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/domain"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	providerDomain "github.com/homefix/service-booking/internal/domain/provider"
	"github.com/homefix/service-booking/internal/domain/store"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RegisterProviderRequest is the request DTO for registering a provider.
type RegisterProviderRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Phone       string `json:"phone"`
	ServiceType string `json:"service_type" binding:"required"`
}

// ListProvidersQuery holds optional provider list filters.
type ListProvidersQuery struct {
	ServiceType   string `form:"service_type"`
	AvailableOnly bool   `form:"available"`
	Email         string `form:"email"`
}

// ProviderService implements use cases for provider management.
type ProviderService struct {
	store  store.Store
	clock  *Clock
	logger *zap.Logger
}

// NewProviderService creates a new ProviderService.
func NewProviderService(st store.Store, clock *Clock, logger *zap.Logger) *ProviderService {
	return &ProviderService{store: st, clock: clock, logger: logger}
}

// RegisterProvider creates a new provider, available by default.
func (s *ProviderService) RegisterProvider(ctx context.Context, req RegisterProviderRequest) (*ProviderDTO, error) {
	serviceType, err := bookingDomain.ParseServiceType(req.ServiceType)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	p, err := providerDomain.NewProvider(req.Name, req.Email, req.Phone, serviceType, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Providers().Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("provider registered",
		zap.String("provider_id", p.ID().String()),
		zap.String("service_type", string(serviceType)),
	)

	dto := toProviderDTO(p)
	return &dto, nil
}

// GetProvider retrieves a provider by ID.
func (s *ProviderService) GetProvider(ctx context.Context, id uuid.UUID) (*ProviderDTO, error) {
	p, err := s.store.Providers().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toProviderDTO(p)
	return &dto, nil
}

// ListProviders returns providers matching the query, ordered by name.
func (s *ProviderService) ListProviders(ctx context.Context, q ListProvidersQuery) ([]ProviderDTO, error) {
	filter := providerDomain.ListFilter{AvailableOnly: q.AvailableOnly, Email: q.Email}
	if q.ServiceType != "" {
		st, err := bookingDomain.ParseServiceType(q.ServiceType)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		filter.ServiceType = &st
	}

	providers, err := s.store.Providers().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]ProviderDTO, len(providers))
	for i, p := range providers {
		dtos[i] = toProviderDTO(p)
	}
	return dtos, nil
}

// SetAvailability toggles whether the provider can be auto-assigned.
func (s *ProviderService) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (_ *ProviderDTO, err error) {
	ctx, span := startSpan(ctx, "ProviderService.SetAvailability",
		attribute.String("provider_id", id.String()),
		attribute.Bool("available", available),
	)
	defer func() { endSpan(span, err) }()

	var p *providerDomain.Provider
	err = s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		p, err = tx.Providers().FindByID(ctx, id)
		if err != nil {
			return err
		}
		p.SetAvailability(available)
		return tx.Providers().UpdateAvailability(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("provider availability changed",
		zap.String("provider_id", id.String()),
		zap.Bool("available", available),
	)

	dto := toProviderDTO(p)
	return &dto, nil
}
