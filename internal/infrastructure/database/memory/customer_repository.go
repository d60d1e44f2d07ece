package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"customer-store/internal/domain/customer"
	"customer-store/internal/pkg/apperrors"
)

// Constraint names match the unique indexes created by the postgres migrations.
const (
	constraintEmail    = "ux_customers_email"
	constraintIdentity = "ux_customers_identity"
)

type CustomerRepository struct {
	mu        sync.RWMutex
	nextID    int64
	customers map[int64]customer.Customer
	emails    map[string]int64
	identity  map[string]int64
	logger    *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{
		customers: make(map[int64]customer.Customer),
		emails:    make(map[string]int64),
		identity:  make(map[string]int64),
		logger:    logger.With("component", "MemoryCustomerRepository"),
	}
}

func identityKey(c *customer.Customer) string {
	return c.Firstname + "\x00" + c.Lastname + "\x00" + c.DateOfBirth.UTC().Format(time.RFC3339Nano)
}

func (r *CustomerRepository) Ping(_ context.Context) error {
	return nil
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cust.CustomerID != 0 {
		if _, ok := r.customers[cust.CustomerID]; !ok {
			r.logger.WarnContext(ctx, "Update affected zero rows, customer likely not found", slog.Int64("customerID", cust.CustomerID))
			return apperrors.ErrNotFound
		}
	}

	if err := r.checkUnique(cust); err != nil {
		r.logger.WarnContext(ctx, "Failed to save customer due to unique constraint violation", slog.Any("error", err))
		return err
	}

	now := time.Now()
	if cust.CustomerID == 0 {
		r.nextID++
		cust.CustomerID = r.nextID
		cust.CreatedAt = now
	} else {
		previous := r.customers[cust.CustomerID]
		delete(r.emails, previous.Email)
		delete(r.identity, identityKey(&previous))
		cust.CreatedAt = previous.CreatedAt
	}
	cust.UpdatedAt = now

	r.customers[cust.CustomerID] = *cust
	r.emails[cust.Email] = cust.CustomerID
	r.identity[identityKey(cust)] = cust.CustomerID

	r.logger.InfoContext(ctx, "Customer saved successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) checkUnique(cust *customer.Customer) error {
	if id, ok := r.emails[cust.Email]; ok && id != cust.CustomerID {
		return apperrors.NewConstraintError(constraintEmail)
	}
	if id, ok := r.identity[identityKey(cust)]; ok && id != cust.CustomerID {
		return apperrors.NewConstraintError(constraintIdentity)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cust, ok := r.customers[customerID]
	if !ok {
		r.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
		return nil, apperrors.ErrNotFound
	}
	return &cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customers := make([]*customer.Customer, 0, len(r.customers))
	for _, cust := range r.customers {
		c := cust
		customers = append(customers, &c)
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CustomerID < customers[j].CustomerID
	})

	r.logger.InfoContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cust, ok := r.customers[customerID]
	if !ok {
		r.logger.WarnContext(ctx, "Delete affected zero rows, customer likely not found", slog.Int64("customerID", customerID))
		return apperrors.ErrNotFound
	}

	delete(r.customers, customerID)
	delete(r.emails, cust.Email)
	delete(r.identity, identityKey(&cust))

	r.logger.InfoContext(ctx, "Customer deleted successfully", slog.Int64("customerID", customerID))
	return nil
}

func (r *CustomerRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.customers)), nil
}
