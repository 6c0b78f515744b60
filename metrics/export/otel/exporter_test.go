package otel

import (
	"context"
	"testing"

	authcore "github.com/recipeshare/authcore"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	snapshot authcore.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() authcore.MetricsSnapshot {
	return f.snapshot
}

func (f *fakeSource) AuditDropped() uint64 {
	return f.dropped
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	values := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					values[m.Name] = dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					values[m.Name] = dp.Value
				}
			}
		}
	}
	return values
}

func TestOTelExporterObservesCounters(t *testing.T) {
	source := &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters: map[authcore.MetricID]uint64{
				authcore.MetricLoginSuccess: 9,
				authcore.MetricLoginFailure: 2,
			},
			Histograms: map[authcore.MetricID][]uint64{},
		},
		dropped: 3,
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	exporter, err := NewOTelExporterFromSource(provider.Meter("test"), source)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() { _ = exporter.Close() }()

	values := collect(t, reader)
	if values["authcore_login_success_total"] != 9 {
		t.Fatalf("login success = %d, want 9", values["authcore_login_success_total"])
	}
	if values["authcore_login_failure_total"] != 2 {
		t.Fatalf("login failure = %d, want 2", values["authcore_login_failure_total"])
	}
	if values["authcore_audit_dropped_total"] != 3 {
		t.Fatalf("audit dropped = %d, want 3", values["authcore_audit_dropped_total"])
	}
}

func TestOTelExporterObservesHistogramBuckets(t *testing.T) {
	source := &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters: map[authcore.MetricID]uint64{},
			Histograms: map[authcore.MetricID][]uint64{
				authcore.MetricLoginLatency: {1, 1, 0, 0, 0, 0, 0, 2},
			},
		},
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	exporter, err := NewOTelExporterFromSource(provider.Meter("test"), source)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() { _ = exporter.Close() }()

	values := collect(t, reader)
	if values["authcore_login_latency_seconds_bucket_le_0_005"] != 1 {
		t.Fatalf("first bucket = %d, want 1", values["authcore_login_latency_seconds_bucket_le_0_005"])
	}
	if values["authcore_login_latency_seconds_bucket_le_0_01"] != 2 {
		t.Fatalf("buckets must be cumulative, got %d", values["authcore_login_latency_seconds_bucket_le_0_01"])
	}
	if values["authcore_login_latency_seconds_bucket_le_inf"] != 4 {
		t.Fatalf("inf bucket = %d, want 4", values["authcore_login_latency_seconds_bucket_le_inf"])
	}
	if values["authcore_login_latency_seconds_count"] != 4 {
		t.Fatalf("count = %d, want 4", values["authcore_login_latency_seconds_count"])
	}
}

func TestOTelExporterValidatesInputs(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(provider.Meter("test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
}
