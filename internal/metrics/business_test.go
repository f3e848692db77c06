package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine checks that the Prometheus output contains a metric
// matching the given name, partial label pattern, and value. Uses regex to
// handle extra OTel scope labels injected by the Prometheus exporter.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("entryvault_test")
	require.NoError(t, err)

	businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "entryvault_test")

	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)
}

func TestBusinessMetrics_Record(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider("entryvault_test")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "entryvault_test")
	require.NoError(t, err)

	t.Run("Success_RecordOperations", func(t *testing.T) {
		bm.RecordOperation(ctx, "vault", "encrypt_entry", "success")
		bm.RecordOperation(ctx, "vault", "encrypt_entry", "success")
		bm.RecordOperation(ctx, "vault", "decrypt_entry", "error")
	})

	t.Run("Success_RecordDurations", func(t *testing.T) {
		bm.RecordDuration(ctx, "vault", "initialize", 120*time.Millisecond, "success")
		bm.RecordDuration(ctx, "vault", "rotate_passphrase", 250*time.Millisecond, "error")
	})

	t.Run("Success_ExposedViaHandler", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		provider.Handler().ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)
		output := recorder.Body.String()
		assertMetricLine(t, output,
			"entryvault_test_operations_total",
			`operation="encrypt_entry",status="success"`, "2")
		assertMetricLine(t, output,
			"entryvault_test_operations_total",
			`operation="decrypt_entry",status="error"`, "1")
		assert.Contains(t, output, "entryvault_test_operation_duration_seconds")
	})
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()

	assert.NotNil(t, noOpMetrics)
	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)

	assert.NotPanics(t, func() {
		noOpMetrics.RecordOperation(context.Background(), "vault", "encrypt_entry", "success")
		noOpMetrics.RecordDuration(context.Background(), "vault", "encrypt_entry", 100*time.Millisecond, "error")
	})
}
