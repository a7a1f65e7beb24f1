package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(ProviderErrors.WithLabelValues("customer-search"))
	ProviderErrors.WithLabelValues("customer-search").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(ProviderErrors.WithLabelValues("customer-search")))

	before = testutil.ToFloat64(PaymentFailures)
	PaymentFailures.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(PaymentFailures))
}
