package application

import (
	"context"

	customerDomain "github.com/homefix/service-booking/internal/domain/customer"
	"github.com/homefix/service-booking/internal/domain/store"
	"go.uber.org/zap"
)

// RegisterCustomerRequest is the request DTO for registering a customer.
type RegisterCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
}

// CustomerService handles customer registration and lookup.
type CustomerService struct {
	store  store.Store
	clock  *Clock
	logger *zap.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(st store.Store, clock *Clock, logger *zap.Logger) *CustomerService {
	return &CustomerService{store: st, clock: clock, logger: logger}
}

// RegisterCustomer creates a new customer. Emails are unique.
func (s *CustomerService) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*CustomerDTO, error) {
	c, err := customerDomain.NewCustomer(req.Name, req.Email, req.Phone, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Customers().Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("customer registered", zap.String("customer_id", c.ID().String()))

	dto := toCustomerDTO(c)
	return &dto, nil
}

// ListCustomers returns customers ordered by name, optionally only the one with email.
func (s *CustomerService) ListCustomers(ctx context.Context, email string) ([]CustomerDTO, error) {
	customers, err := s.store.Customers().List(ctx, email)
	if err != nil {
		return nil, err
	}
	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(c)
	}
	return dtos, nil
}
