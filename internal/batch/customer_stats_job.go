package batch

import (
	"context"
	"customer-store/internal/infrastructure/monitoring"
	"fmt"
	"log/slog"
	"time"
)

type CustomerCounter interface {
	CountCustomers(ctx context.Context) (int64, error)
}

// CustomerStatsJob refreshes the stored-customers gauge on a schedule.
type CustomerStatsJob struct {
	counter CustomerCounter
	logger  *slog.Logger
}

func NewCustomerStatsJob(counter CustomerCounter, logger *slog.Logger) *CustomerStatsJob {
	if counter == nil || logger == nil {
		panic("CustomerStatsJob dependencies cannot be nil")
	}
	return &CustomerStatsJob{
		counter: counter,
		logger:  logger.With("job", "CustomerStats"),
	}
}

func (j *CustomerStatsJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting customer statistics job.")

	count, err := j.counter.CountCustomers(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to count customers, gauge left unchanged.", slog.Any("error", err))
		return fmt.Errorf("cannot refresh customer statistics: %w", err)
	}

	monitoring.SetCustomersTotal(count)

	j.logger.InfoContext(ctx, "Customer statistics job finished.",
		slog.Int64("customers", count),
		slog.Duration("duration", time.Since(startTime)),
	)
	return nil
}
