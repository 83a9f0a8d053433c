package customer

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	// List returns customers ordered by name, optionally restricted to one email.
	List(ctx context.Context, email string) ([]*Customer, error)
	Save(ctx context.Context, customer *Customer) error
}
