package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/session"
)

type fakeSource struct {
	snapshot goGuard.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goGuard.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                     { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewFromSource(fakeSource{
		snapshot: goGuard.MetricsSnapshot{
			Counters:   map[goGuard.MetricID]uint64{},
			Histograms: map[goGuard.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderCountersGuardStatesAndHistogram(t *testing.T) {
	exp := NewFromSource(fakeSource{
		snapshot: goGuard.MetricsSnapshot{
			Counters: map[goGuard.MetricID]uint64{
				goGuard.MetricLoginSuccess:    7,
				goGuard.MetricGuardForbidden:  3,
				goGuard.MetricGuardAuthorized: 11,
			},
			Histograms: map[goGuard.MetricID][]uint64{
				goGuard.MetricHydrateLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	for _, want := range []string{
		"goguard_login_success_total 7",
		"goguard_hydrate_purged_total 0",
		`goguard_guard_decisions_total{state="forbidden"} 3`,
		`goguard_guard_decisions_total{state="authorized"} 11`,
		`goguard_guard_decisions_total{state="loading"} 0`,
		`goguard_hydrate_latency_seconds_bucket{le="0.001"} 1`,
		`goguard_hydrate_latency_seconds_bucket{le="+Inf"} 36`,
		"goguard_hydrate_latency_seconds_count 36",
		"goguard_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
	if strings.Count(out, "# TYPE goguard_guard_decisions_total counter") != 1 {
		t.Fatalf("guard decisions must share one TYPE line:\n%s", out)
	}
}

func TestRenderSkipsDisabledHistogram(t *testing.T) {
	exp := NewFromSource(fakeSource{
		snapshot: goGuard.MetricsSnapshot{
			Counters:   map[goGuard.MetricID]uint64{goGuard.MetricLogout: 1},
			Histograms: map[goGuard.MetricID][]uint64{},
		},
	})
	if out := exp.Render(); strings.Contains(out, "goguard_hydrate_latency_seconds") {
		t.Fatalf("histogram rendered without data:\n%s", out)
	}
}

func TestHandlerServesEngineMetrics(t *testing.T) {
	engine, err := goGuard.New().
		WithConfig(goGuard.GroceryConfig()).
		WithBackend(session.NewMemoryBackend()).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()
	engine.Hydrate(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	New(engine).Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "goguard_hydrate_empty_total 1") {
		t.Fatalf("expected hydrate counter, got:\n%s", rec.Body.String())
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewFromSource(fakeSource{
		snapshot: goGuard.MetricsSnapshot{
			Counters: map[goGuard.MetricID]uint64{
				goGuard.MetricHydrateRestored:    1000,
				goGuard.MetricLoginSuccess:       40,
				goGuard.MetricSessionInvalidated: 8,
				goGuard.MetricGuardAuthorized:    90000,
				goGuard.MetricGuardForbidden:     120,
			},
			Histograms: map[goGuard.MetricID][]uint64{
				goGuard.MetricHydrateLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
