package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/domain"
	bookingDomain "github.com/homefix/service-booking/internal/domain/booking"
	providerDomain "github.com/homefix/service-booking/internal/domain/provider"
	"gorm.io/gorm"
)

// ProviderModel is the GORM model for the providers table.
type ProviderModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Email       string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone       string    `gorm:"type:varchar(50)"`
	ServiceType string    `gorm:"type:varchar(30);not null;index:idx_providers_service_available"`
	IsAvailable bool      `gorm:"not null;index:idx_providers_service_available"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (ProviderModel) TableName() string { return "providers" }

// GormProviderRepository implements ProviderRepository using GORM.
type GormProviderRepository struct {
	db *gorm.DB
}

func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{db: db}
}

func (r *GormProviderRepository) FindByID(ctx context.Context, id uuid.UUID) (*providerDomain.Provider, error) {
	var model ProviderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Provider", id.String())
		}
		return nil, fmt.Errorf("failed to find provider by ID: %w", err)
	}
	return toProviderDomain(&model)
}

func (r *GormProviderRepository) FindAvailable(ctx context.Context, serviceType bookingDomain.ServiceType) ([]*providerDomain.Provider, error) {
	var models []ProviderModel
	if err := r.db.WithContext(ctx).
		Where("service_type = ? AND is_available = ?", string(serviceType), true).
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find available providers: %w", err)
	}
	return toProviderDomains(models)
}

func (r *GormProviderRepository) List(ctx context.Context, filter providerDomain.ListFilter) ([]*providerDomain.Provider, error) {
	query := r.db.WithContext(ctx).Model(&ProviderModel{})
	if filter.ServiceType != nil {
		query = query.Where("service_type = ?", string(*filter.ServiceType))
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}

	var models []ProviderModel
	if err := query.Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return toProviderDomains(models)
}

func (r *GormProviderRepository) Save(ctx context.Context, p *providerDomain.Provider) error {
	model := toProviderModel(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.NewDuplicateError("Provider", "email")
		}
		return fmt.Errorf("failed to save provider: %w", err)
	}
	return nil
}

// UpdateAvailability writes the provider's availability flag.
func (r *GormProviderRepository) UpdateAvailability(ctx context.Context, p *providerDomain.Provider) error {
	result := r.db.WithContext(ctx).
		Model(&ProviderModel{}).
		Where("id = ?", p.ID()).
		Update("is_available", p.IsAvailable())
	if result.Error != nil {
		return fmt.Errorf("failed to update provider availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Provider", p.ID().String())
	}
	return nil
}

func toProviderModel(p *providerDomain.Provider) *ProviderModel {
	return &ProviderModel{
		ID:          p.ID(),
		Name:        p.Name(),
		Email:       p.Email(),
		Phone:       p.Phone(),
		ServiceType: string(p.ServiceType()),
		IsAvailable: p.IsAvailable(),
		CreatedAt:   p.CreatedAt(),
	}
}

func toProviderDomain(m *ProviderModel) (*providerDomain.Provider, error) {
	serviceType, err := bookingDomain.ParseServiceType(m.ServiceType)
	if err != nil {
		return nil, err
	}
	return providerDomain.Reconstruct(m.ID, m.Name, m.Email, m.Phone, serviceType, m.IsAvailable, m.CreatedAt.UTC()), nil
}

func toProviderDomains(models []ProviderModel) ([]*providerDomain.Provider, error) {
	providers := make([]*providerDomain.Provider, len(models))
	for i := range models {
		p, err := toProviderDomain(&models[i])
		if err != nil {
			return nil, err
		}
		providers[i] = p
	}
	return providers, nil
}
