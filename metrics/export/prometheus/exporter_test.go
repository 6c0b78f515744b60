package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authcore "github.com/recipeshare/authcore"
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

func sourceWithData() *fakeSource {
	return &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters: map[authcore.MetricID]uint64{
				authcore.MetricLoginSuccess:     4,
				authcore.MetricLockoutTriggered: 1,
			},
			Histograms: map[authcore.MetricID][]uint64{
				authcore.MetricLoginLatency: {2, 0, 1, 0, 0, 0, 0, 3},
			},
		},
		dropped: 7,
	}
}

func TestRenderCounters(t *testing.T) {
	exporter := NewPrometheusExporterFromSource(sourceWithData())
	out := exporter.Render()

	if !strings.Contains(out, "authcore_login_success_total 4") {
		t.Fatalf("missing login success counter:\n%s", out)
	}
	if !strings.Contains(out, "authcore_lockout_triggered_total 1") {
		t.Fatalf("missing lockout counter:\n%s", out)
	}
	if !strings.Contains(out, "authcore_audit_dropped_total 7") {
		t.Fatalf("missing audit dropped counter:\n%s", out)
	}
}

func TestRenderHistogramIsCumulative(t *testing.T) {
	exporter := NewPrometheusExporterFromSource(sourceWithData())
	out := exporter.Render()

	if !strings.Contains(out, `authcore_login_latency_seconds_bucket{le="0.005"} 2`) {
		t.Fatalf("wrong first bucket:\n%s", out)
	}
	if !strings.Contains(out, `authcore_login_latency_seconds_bucket{le="0.025"} 3`) {
		t.Fatalf("buckets must be cumulative:\n%s", out)
	}
	if !strings.Contains(out, `authcore_login_latency_seconds_bucket{le="+Inf"} 6`) {
		t.Fatalf("wrong +Inf bucket:\n%s", out)
	}
	if !strings.Contains(out, "authcore_login_latency_seconds_count 6") {
		t.Fatalf("wrong count:\n%s", out)
	}
}

func TestRenderEmptySource(t *testing.T) {
	exporter := NewPrometheusExporterFromSource(&fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters:   map[authcore.MetricID]uint64{},
			Histograms: map[authcore.MetricID][]uint64{},
		},
	})
	if out := exporter.Render(); out != "" {
		t.Fatalf("expected empty render for empty source, got:\n%s", out)
	}
}

func TestHandlerServesText(t *testing.T) {
	exporter := NewPrometheusExporterFromSource(sourceWithData())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "authcore_login_success_total") {
		t.Fatal("body missing metrics")
	}
}
