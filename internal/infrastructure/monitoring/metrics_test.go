package monitoring

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCustomerOperation(t *testing.T) {
	Business.CustomerOperationsTotal.Reset()

	RecordCustomerOperation(OperationCreated)
	RecordCustomerOperation(OperationCreated)
	RecordCustomerOperation(OperationDeleted)

	assert.Equal(t, float64(2), testutil.ToFloat64(Business.CustomerOperationsTotal.WithLabelValues(OperationCreated)))
	assert.Equal(t, float64(1), testutil.ToFloat64(Business.CustomerOperationsTotal.WithLabelValues(OperationDeleted)))
	assert.Equal(t, float64(0), testutil.ToFloat64(Business.CustomerOperationsTotal.WithLabelValues(OperationUpdated)))
}

func TestSetCustomersTotal(t *testing.T) {
	SetCustomersTotal(42)

	expected := `
		# HELP customer_store_customers_total Number of customers currently stored.
		# TYPE customer_store_customers_total gauge
		customer_store_customers_total 42
	`
	if err := testutil.CollectAndCompare(Business.CustomersTotal, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics for customer_store_customers_total: %v", err)
	}
}

func TestRecordDBQuery(t *testing.T) {
	DB.QueryDuration.Reset()

	RecordDBQuery("find_customer_by_id", nil, 2*time.Millisecond)
	RecordDBQuery("find_customer_by_id", errors.New("boom"), 3*time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(DB.QueryDuration))
}
