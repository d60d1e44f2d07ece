package customer

import (
	"context"
	"customer-store/internal/pkg/apperrors"
	"fmt"
)

var (
	ErrNotFound = fmt.Errorf("customer %w", apperrors.ErrNotFound)

	ErrDuplicateCustomer = fmt.Errorf("customer with the same email or name and date of birth %w", apperrors.ErrAlreadyExists)
)

type CustomerRepository interface {
	// Save inserts the customer when CustomerID is zero and assigns its ID,
	// otherwise it replaces the stored row.
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindAll(ctx context.Context) ([]*Customer, error)

	Delete(ctx context.Context, customerID int64) error

	Count(ctx context.Context) (int64, error)
}
