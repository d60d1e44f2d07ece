package postgres

import (
	"context"
	"customer-store/internal/domain/customer"
	"customer-store/internal/pkg/apperrors"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pgxmockExpectationsNotMetMsg = "there were unfulfilled expectations"

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	createdAt = time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	updatedAt = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
)

var customerColumns = []string{"id", "firstname", "lastname", "date_of_birth", "date_of_birth_offset", "phone_number", "email", "bank_account_number", "created_at", "updated_at"}

func newTestCustomer() *customer.Customer {
	return &customer.Customer{
		CustomerID:        1,
		Firstname:         "John",
		Lastname:          "Doe",
		DateOfBirth:       time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		PhoneNumber:       9383548030,
		Email:             "john@example.com",
		BankAccountNumber: "123456789",
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
}

func customerRow(rows *pgxmock.Rows, c *customer.Customer) *pgxmock.Rows {
	return rows.AddRow(c.CustomerID, c.Firstname, c.Lastname, c.DateOfBirth, utcOffsetSeconds(c.DateOfBirth), c.PhoneNumber, c.Email, c.BankAccountNumber, c.CreatedAt, c.UpdatedAt)
}

func setupCustomerRepo(t *testing.T) (context.Context, *CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	ctx := context.Background()
	repo := NewCustomerRepository(mockPool, logger)

	return ctx, repo, mockPool
}

func TestCreateCustomerWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	cust := newTestCustomer()
	cust.CustomerID = 0

	mockPool.ExpectQuery(regexp.QuoteMeta(insertCustomerQuery)).WithArgs(
		cust.Firstname,
		cust.Lastname,
		cust.DateOfBirth,
		int32(0),
		cust.PhoneNumber,
		cust.Email,
		cust.BankAccountNumber,
	).WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
		AddRow(int64(42), createdAt, createdAt))

	err := repo.Save(ctx, cust)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), cust.CustomerID)
	assert.Equal(t, createdAt, cust.CreatedAt)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreateCustomerWhenEmailTaken(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	cust := newTestCustomer()
	cust.CustomerID = 0

	mockPool.ExpectQuery(regexp.QuoteMeta(insertCustomerQuery)).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "ux_customers_email"})

	err := repo.Save(ctx, cust)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.ErrorContains(t, err, "ux_customers_email")
	assert.Equal(t, int64(0), cust.CustomerID)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreateCustomerWhenDatabaseFails(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	cust := newTestCustomer()
	cust.CustomerID = 0

	mockPool.ExpectQuery(regexp.QuoteMeta(insertCustomerQuery)).WillReturnError(errors.New("connection reset"))

	err := repo.Save(ctx, cust)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.NotErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.EqualError(t, err, "[DB_ERROR] failed to insert customer")
}

func TestSaveExistingCustomerWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	cust := newTestCustomer()

	mockPool.ExpectQuery(regexp.QuoteMeta(updateCustomerQuery)).WithArgs(
		cust.Firstname,
		cust.Lastname,
		cust.DateOfBirth,
		int32(0),
		cust.PhoneNumber,
		cust.Email,
		cust.BankAccountNumber,
		cust.CustomerID,
	).WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(createdAt, updatedAt))

	err := repo.Save(ctx, cust)
	assert.NoError(t, err)
	assert.Equal(t, updatedAt, cust.UpdatedAt)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSaveExistingCustomerWhenMissing(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	cust := newTestCustomer()
	cust.CustomerID = 404

	mockPool.ExpectQuery(regexp.QuoteMeta(updateCustomerQuery)).WillReturnError(pgx.ErrNoRows)

	err := repo.Save(ctx, cust)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSaveExistingCustomerWhenIdentityTaken(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(updateCustomerQuery)).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "ux_customers_identity"})

	err := repo.Save(ctx, newTestCustomer())
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestSaveNilCustomer(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	err := repo.Save(ctx, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestFindCustomerByIDReturnOne(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	expected := newTestCustomer()
	mockPool.ExpectQuery(regexp.QuoteMeta(findCustomerByIDQuery)).WithArgs(expected.CustomerID).
		WillReturnRows(customerRow(pgxmock.NewRows(customerColumns), expected))

	customerResult, err := repo.FindByID(ctx, expected.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, expected, customerResult)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestDateOfBirthOffsetRoundTrip(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	cest := time.FixedZone("CEST", 2*60*60)
	cust := newTestCustomer()
	cust.CustomerID = 0
	cust.DateOfBirth = time.Date(1990, 4, 12, 0, 0, 0, 0, cest)

	mockPool.ExpectQuery(regexp.QuoteMeta(insertCustomerQuery)).WithArgs(
		cust.Firstname,
		cust.Lastname,
		cust.DateOfBirth,
		int32(7200),
		cust.PhoneNumber,
		cust.Email,
		cust.BankAccountNumber,
	).WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
		AddRow(int64(5), createdAt, createdAt))

	require.NoError(t, repo.Save(ctx, cust))

	// TIMESTAMPTZ hands the instant back without its original offset.
	stored := *cust
	stored.DateOfBirth = cust.DateOfBirth.UTC()
	mockPool.ExpectQuery(regexp.QuoteMeta(findCustomerByIDQuery)).WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(customerColumns).AddRow(
			stored.CustomerID, stored.Firstname, stored.Lastname, stored.DateOfBirth, int32(7200),
			stored.PhoneNumber, stored.Email, stored.BankAccountNumber, stored.CreatedAt, stored.UpdatedAt))

	found, err := repo.FindByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "1990-04-12T00:00:00+02:00", found.DateOfBirth.Format(time.RFC3339))
	assert.True(t, cust.DateOfBirth.Equal(found.DateOfBirth))
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestUTCOffsetHelpers(t *testing.T) {
	minus := time.Date(1985, 11, 3, 0, 0, 0, 0, time.FixedZone("", -5*60*60-30*60))

	assert.Equal(t, int32(-19800), utcOffsetSeconds(minus))
	assert.Equal(t, int32(0), utcOffsetSeconds(time.Date(1985, 11, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1985-11-03T00:00:00-05:30", inUTCOffset(minus.UTC(), -19800).Format(time.RFC3339))
	assert.Equal(t, time.UTC, inUTCOffset(minus, 0).Location())
}

func TestFindCustomerByIDReturnNone(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(findCustomerByIDQuery)).WithArgs(int64(7)).WillReturnError(pgx.ErrNoRows)

	customerResult, err := repo.FindByID(ctx, 7)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, customerResult)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindAllThenGetAllCustomer(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	first := newTestCustomer()
	second := newTestCustomer()
	second.CustomerID = 2
	second.Email = "jane@example.com"
	second.Firstname = "Jane"

	rows := pgxmock.NewRows(customerColumns)
	customerRow(rows, first)
	customerRow(rows, second)
	mockPool.ExpectQuery(regexp.QuoteMeta(findAllCustomersQuery)).WillReturnRows(rows)

	customerResult, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, customerResult, 2)
	assert.Equal(t, first.CustomerID, customerResult[0].CustomerID)
	assert.Equal(t, "jane@example.com", customerResult[1].Email)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindAllWhenEmpty(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(findAllCustomersQuery)).WillReturnRows(pgxmock.NewRows(customerColumns))

	customerResult, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, customerResult)
	assert.Empty(t, customerResult)
}

func TestFindAllWhenQueryFails(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(findAllCustomersQuery)).WillReturnError(errors.New("timeout"))

	_, err := repo.FindAll(ctx)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
}

func TestDeleteCustomer(t *testing.T) {
	t.Run("deletes existing row", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		mockPool.ExpectExec(regexp.QuoteMeta(deleteCustomerQuery)).WithArgs(int64(1)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.Delete(ctx, 1))
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("returns not found when nothing deleted", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		mockPool.ExpectExec(regexp.QuoteMeta(deleteCustomerQuery)).WithArgs(int64(20)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, repo.Delete(ctx, 20), apperrors.ErrNotFound)
	})

	t.Run("wraps database errors", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		mockPool.ExpectExec(regexp.QuoteMeta(deleteCustomerQuery)).WithArgs(int64(1)).
			WillReturnError(errors.New("broken pipe"))

		assert.ErrorIs(t, repo.Delete(ctx, 1), apperrors.ErrDatabase)
	})
}

func TestCountCustomers(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(countCustomersQuery)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestTranslateDBError(t *testing.T) {
	assert.NoError(t, translateDBError(nil, logger))
	assert.ErrorIs(t, translateDBError(pgx.ErrNoRows, logger), apperrors.ErrNotFound)
	assert.ErrorIs(t, translateDBError(&pgconn.PgError{Code: uniqueViolationCode}, logger), apperrors.ErrAlreadyExists)

	err := translateDBError(&pgconn.PgError{Code: "23502"}, logger)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.ErrorContains(t, err, "23502")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DB_ERROR", appErr.Code)

	var constraintErr *apperrors.ConstraintError
	require.ErrorAs(t, translateDBError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "ux_customers_email"}, logger), &constraintErr)
	assert.Equal(t, "ux_customers_email", constraintErr.Constraint)

	assert.ErrorIs(t, translateDBError(errors.New("eof"), logger), apperrors.ErrDatabase)
}
