package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-store/internal/domain/customer"
	"customer-store/internal/infrastructure/monitoring"
	"customer-store/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const (
	insertCustomerQuery = `
        INSERT INTO customers (firstname, lastname, date_of_birth, date_of_birth_offset, phone_number, email, bank_account_number, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	updateCustomerQuery = `
        UPDATE customers
        SET firstname = $1,
            lastname = $2,
            date_of_birth = $3,
            date_of_birth_offset = $4,
            phone_number = $5,
            email = $6,
            bank_account_number = $7,
            updated_at = NOW()
        WHERE id = $8
        RETURNING created_at, updated_at`

	selectCustomerColumns = `
        SELECT id, firstname, lastname, date_of_birth, date_of_birth_offset, phone_number, email, bank_account_number, created_at, updated_at
        FROM customers`

	findCustomerByIDQuery = selectCustomerColumns + `
        WHERE id = $1`

	findAllCustomersQuery = selectCustomerColumns + `
        ORDER BY id ASC`

	deleteCustomerQuery = `DELETE FROM customers WHERE id = $1`

	countCustomersQuery = `SELECT COUNT(*) FROM customers`
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if cust.CustomerID == 0 {

		return r.createCustomer(ctx, cust)
	}

	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) (err error) {
	startTime := time.Now()
	defer func() { monitoring.RecordDBQuery("InsertCustomer", err, time.Since(startTime)) }()

	r.logger.InfoContext(ctx, "Attempting to insert new customer")

	err = r.db.QueryRow(ctx, insertCustomerQuery,
		cust.Firstname,
		cust.Lastname,
		cust.DateOfBirth,
		utcOffsetSeconds(cust.DateOfBirth),
		cust.PhoneNumber,
		cust.Email,
		cust.BankAccountNumber,
	).Scan(
		&cust.CustomerID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)

	if err != nil {

		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation", slog.Any("error", translatedErr))
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to insert customer")
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) (err error) {
	startTime := time.Now()
	defer func() { monitoring.RecordDBQuery("UpdateCustomer", err, time.Since(startTime)) }()

	logger := r.logger.With(slog.Int64("customerID", cust.CustomerID))
	logger.InfoContext(ctx, "Attempting to update customer")

	err = r.db.QueryRow(ctx, updateCustomerQuery,
		cust.Firstname,
		cust.Lastname,
		cust.DateOfBirth,
		utcOffsetSeconds(cust.DateOfBirth),
		cust.PhoneNumber,
		cust.Email,
		cust.BankAccountNumber,
		cust.CustomerID,
	).Scan(
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnContext(ctx, "Update affected zero rows, customer likely not found")
			return apperrors.ErrNotFound
		}
		translatedErr := translateDBError(err, logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Failed to update customer due to unique constraint violation", slog.Any("error", translatedErr))
			return translatedErr
		}
		logger.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to update customer")
	}

	logger.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (cust *customer.Customer, err error) {
	startTime := time.Now()
	defer func() { monitoring.RecordDBQuery("FindCustomerByID", err, time.Since(startTime)) }()

	logger := r.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to find customer by ID")

	cust, err = scanCustomer(r.db.QueryRow(ctx, findCustomerByIDQuery, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnContext(ctx, "Customer not found")
			return nil, apperrors.ErrNotFound
		}
		logger.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to get customer by ID")
	}

	logger.InfoContext(ctx, "Customer found successfully")
	return cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) (customers []*customer.Customer, err error) {
	startTime := time.Now()
	defer func() { monitoring.RecordDBQuery("FindAllCustomers", err, time.Since(startTime)) }()

	r.logger.InfoContext(ctx, "Attempting to find all customers")

	rows, err := r.db.Query(ctx, findAllCustomersQuery)
	if err != nil {

		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to query customers")
	}
	defer rows.Close()

	customers = make([]*customer.Customer, 0)
	for rows.Next() {
		cust, scanErr := scanCustomer(rows)
		if scanErr != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", scanErr))
			err = scanErr
			return nil, apperrors.WrapDatabaseError(scanErr, "failed to scan customer row")
		}
		customers = append(customers, cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "error iterating customer rows")
	}

	r.logger.InfoContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) (err error) {
	startTime := time.Now()
	defer func() { monitoring.RecordDBQuery("DeleteCustomer", err, time.Since(startTime)) }()

	logger := r.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to delete customer")

	cmdTag, err := r.db.Exec(ctx, deleteCustomerQuery, customerID)
	if err != nil {

		logger.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to delete customer")
	}

	if cmdTag.RowsAffected() == 0 {
		logger.WarnContext(ctx, "Delete affected zero rows, customer likely not found")
		return apperrors.ErrNotFound
	}

	logger.InfoContext(ctx, "Customer deleted successfully")
	return nil
}

func (r *CustomerRepository) Count(ctx context.Context) (count int64, err error) {
	startTime := time.Now()
	defer func() { monitoring.RecordDBQuery("CountCustomers", err, time.Since(startTime)) }()

	if err = r.db.QueryRow(ctx, countCustomersQuery).Scan(&count); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count customers", slog.Any("error", err))
		return 0, apperrors.WrapDatabaseError(err, "failed to count customers")
	}
	return count, nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var cust customer.Customer
	var dobOffset int32
	err := row.Scan(
		&cust.CustomerID,
		&cust.Firstname,
		&cust.Lastname,
		&cust.DateOfBirth,
		&dobOffset,
		&cust.PhoneNumber,
		&cust.Email,
		&cust.BankAccountNumber,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	cust.DateOfBirth = inUTCOffset(cust.DateOfBirth, dobOffset)
	return &cust, nil
}

// TIMESTAMPTZ keeps only the instant, so the caller's UTC offset is stored
// next to it in date_of_birth_offset (seconds east of UTC).
func utcOffsetSeconds(t time.Time) int32 {
	_, offset := t.Zone()
	return int32(offset)
}

func inUTCOffset(t time.Time, offsetSeconds int32) time.Time {
	if offsetSeconds == 0 {
		return t.UTC()
	}
	return t.In(time.FixedZone("", int(offsetSeconds)))
}
