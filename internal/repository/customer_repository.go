package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/domain"
	customerDomain "github.com/homefix/service-booking/internal/domain/customer"
	"gorm.io/gorm"
)

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone     string    `gorm:"type:varchar(50)"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (CustomerModel) TableName() string { return "customers" }

// GormCustomerRepository implements CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID retrieves a customer by ID.
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", id.String())
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}
	return toCustomerDomain(&model), nil
}

// List retrieves customers ordered by name.
func (r *GormCustomerRepository) List(ctx context.Context, email string) ([]*customerDomain.Customer, error) {
	query := r.db.WithContext(ctx).Model(&CustomerModel{})
	if email != "" {
		query = query.Where("email = ?", email)
	}

	var models []CustomerModel
	if err := query.Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	customers := make([]*customerDomain.Customer, len(models))
	for i := range models {
		customers[i] = toCustomerDomain(&models[i])
	}
	return customers, nil
}

// Save persists a new customer.
func (r *GormCustomerRepository) Save(ctx context.Context, c *customerDomain.Customer) error {
	model := toCustomerModel(c)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.NewDuplicateError("Customer", "email")
		}
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

func toCustomerModel(c *customerDomain.Customer) CustomerModel {
	return CustomerModel{
		ID:        c.ID(),
		Name:      c.Name(),
		Email:     c.Email(),
		Phone:     c.Phone(),
		CreatedAt: c.CreatedAt(),
	}
}

func toCustomerDomain(m *CustomerModel) *customerDomain.Customer {
	return customerDomain.Reconstruct(m.ID, m.Name, m.Email, m.Phone, m.CreatedAt.UTC())
}
