package telemetry_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "mandibooks-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	meter := mp.Meter("test")
	require.NotNil(t, meter)

	counter, err := telemetry.NewCounter(meter, "test_counter", "Test counter", "1")
	require.NoError(t, err)
	counter.Add(ctx, 5, attribute.String("mode", "CASH"))
	counter.Inc(ctx)

	hist, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{Name: "test_hist", Unit: "s"})
	require.NoError(t, err)
	hist.Record(ctx, 0.5)

	assert.NoError(t, mp.Shutdown(ctx))
}

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestLedgerMetrics(t *testing.T) {
	_, err := telemetry.NewLedgerMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)

	reader, mp := newManualMeter(t)
	m, err := telemetry.NewLedgerMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	m.RecordInvoiceCreated(ctx, tenantID, "SALES", decimal.NewFromInt(1000))
	m.RecordPayment(ctx, tenantID, "CASH", decimal.NewFromInt(600), false)
	m.RecordPayment(ctx, tenantID, "BANK", decimal.NewFromInt(400), false)
	m.RecordPayment(ctx, tenantID, "CASH", decimal.NewFromInt(600), true)
	m.RecordCrateMovement(ctx, tenantID, "GIVEN", 10)
	m.RecordCrateMovement(ctx, tenantID, "RETURNED", 4)
	m.RecordRejection(ctx, "apply_payment", "VALIDATION_ERROR")
	m.RecordRejection(ctx, "apply_payment", "")

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, metrics["mandi_invoices_created_total"]))
	assert.Equal(t, int64(3), sumOf(t, metrics["mandi_payments_total"]))
	assert.Equal(t, int64(14), sumOf(t, metrics["mandi_crates_moved_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["mandi_rejections_total"]))

	amounts, ok := metrics["mandi_payment_amount"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range amounts.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count, "replays do not record an amount")
}

func TestLedgerMetrics_NilReceiver(t *testing.T) {
	var m *telemetry.LedgerMetrics
	assert.NotPanics(t, func() {
		m.RecordInvoiceCreated(context.Background(), uuid.New(), "SALES", decimal.Zero)
		m.RecordPayment(context.Background(), uuid.New(), "CASH", decimal.Zero, false)
		m.RecordCrateMovement(context.Background(), uuid.New(), "GIVEN", 1)
		m.RecordRejection(context.Background(), "op", "CODE")
	})
}
