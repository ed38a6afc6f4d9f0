package instrumentation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_Record(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordScan(ctx, "label", StatusSuccess, 2*time.Second)
	m.RecordThreadSkipped(ctx)
	m.RecordThreadSkipped(ctx)
	m.RecordMessage(ctx, StatusSuccess, true, "example.com", time.Second)
	m.RecordMessage(ctx, StatusError, false, "example.com", time.Second)
	m.RecordGoogleAPIOperation(ctx, ServiceGmail, OperationList, StatusSuccess, 100*time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceGemini, OperationGenerate, StatusError, 3*time.Second)

	got := collect(t, reader)

	assert.Equal(t, int64(1), sumValue(t, got["scans_total"]))
	assert.Equal(t, int64(2), sumValue(t, got["threads_skipped_total"]))
	assert.Equal(t, int64(2), sumValue(t, got["messages_processed_total"]))
	assert.Equal(t, int64(2), sumValue(t, got["google_api_operations_total"]))
	assert.Contains(t, got, "scan_duration_seconds")
	assert.Contains(t, got, "message_duration_seconds")
	assert.Contains(t, got, "google_api_operation_duration_seconds")
}

func TestMetrics_DetailedLabels(t *testing.T) {
	tests := []struct {
		name       string
		detailed   bool
		wantDomain bool
	}{
		{"disabled", false, false},
		{"enabled", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, reader := newTestMetrics(t, tt.detailed)
			m.RecordMessage(context.Background(), StatusSuccess, false, "example.com", time.Second)

			sum := collect(t, reader)["messages_processed_total"].Data.(metricdata.Sum[int64])
			require.Len(t, sum.DataPoints, 1)
			_, has := sum.DataPoints[0].Attributes.Value(attrDomain)
			assert.Equal(t, tt.wantDomain, has)
		})
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	ctx := context.Background()
	for _, m := range []*Metrics{nil, {}} {
		assert.NotPanics(t, func() {
			m.RecordScan(ctx, "star", StatusError, time.Second)
			m.RecordThreadSkipped(ctx)
			m.RecordMessage(ctx, StatusSuccess, true, "", time.Second)
			m.RecordGoogleAPIOperation(ctx, ServiceGmail, OperationSend, StatusSuccess, time.Second)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusFor(nil))
	assert.Equal(t, StatusError, StatusFor(errors.New("boom")))
}
