package batch

import (
	"context"
	"customer-store/internal/infrastructure/monitoring"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCounter struct {
	mock.Mock
}

func (m *mockCounter) CountCustomers(ctx context.Context) (int64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

func TestCustomerStatsJob_Run(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("sets gauge from count", func(t *testing.T) {
		counter := new(mockCounter)
		counter.On("CountCustomers", ctx).Return(int64(17), nil).Once()

		err := NewCustomerStatsJob(counter, logger).Run(ctx)

		assert.NoError(t, err)
		assert.Equal(t, float64(17), testutil.ToFloat64(monitoring.Business.CustomersTotal))
		counter.AssertExpectations(t)
	})

	t.Run("keeps gauge on failure", func(t *testing.T) {
		monitoring.SetCustomersTotal(5)
		counter := new(mockCounter)
		countErr := errors.New("store unavailable")
		counter.On("CountCustomers", ctx).Return(int64(0), countErr).Once()

		err := NewCustomerStatsJob(counter, logger).Run(ctx)

		assert.ErrorIs(t, err, countErr)
		assert.Equal(t, float64(5), testutil.ToFloat64(monitoring.Business.CustomersTotal))
	})
}

func TestNewCustomerStatsJobPanics(t *testing.T) {
	assert.Panics(t, func() { NewCustomerStatsJob(nil, slog.Default()) })
}
