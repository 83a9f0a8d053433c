package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/homefix/service-booking/internal/common/domain"
)

// Customer is the party requesting services. It carries no lifecycle state.
type Customer struct {
	id        uuid.UUID
	name      string
	email     string
	phone     string
	createdAt time.Time
}

// NewCustomer creates a new customer with validated fields.
func NewCustomer(name, email, phone string, now time.Time) (*Customer, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, domain.NewValidationError("customer name is required")
	}
	if email == "" {
		return nil, domain.NewValidationError("customer email is required")
	}

	return &Customer{
		id:        uuid.New(),
		name:      name,
		email:     email,
		phone:     strings.TrimSpace(phone),
		createdAt: now,
	}, nil
}

// Reconstruct rebuilds a Customer from persistence.
func Reconstruct(id uuid.UUID, name, email, phone string, createdAt time.Time) *Customer {
	return &Customer{
		id:        id,
		name:      name,
		email:     email,
		phone:     phone,
		createdAt: createdAt,
	}
}

// Getters.
func (c *Customer) ID() uuid.UUID        { return c.id }
func (c *Customer) Name() string         { return c.name }
func (c *Customer) Email() string        { return c.email }
func (c *Customer) Phone() string        { return c.phone }
func (c *Customer) CreatedAt() time.Time { return c.createdAt }
