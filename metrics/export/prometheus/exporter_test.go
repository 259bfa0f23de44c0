package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goConvert "github.com/MrEthical07/goConvert"
)

type fakeSource struct {
	snapshot goConvert.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goConvert.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                       { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: goConvert.MetricsSnapshot{
			Counters:   map[goConvert.MetricID]uint64{},
			Histograms: map[goConvert.MetricID][]uint64{},
		},
	})
	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output, got:\n%s", got)
	}
}

func TestRenderIncludesCountersAndHistograms(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: goConvert.MetricsSnapshot{
			Counters: map[goConvert.MetricID]uint64{
				goConvert.MetricLoginSuccess:    7,
				goConvert.MetricConversionStale: 3,
			},
			Histograms: map[goConvert.MetricID][]uint64{
				goConvert.MetricConversionLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	for _, want := range []string{
		"goconvert_login_success_total 7",
		"goconvert_conversion_stale_total 3",
		"goconvert_logout_total 0",
		`goconvert_conversion_latency_seconds_bucket{le="0.005"} 1`,
		`goconvert_conversion_latency_seconds_bucket{le="+Inf"} 36`,
		"goconvert_conversion_latency_seconds_count 36",
		"goconvert_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "goconvert_token_exchange_latency_seconds") {
		t.Fatalf("absent histogram must not be rendered:\n%s", out)
	}
}

func TestHandlerServesLiveClient(t *testing.T) {
	client, err := goConvert.New().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer client.Close()
	client.Logout(context.Background())

	rec := httptest.NewRecorder()
	NewExporter(client).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(rec.Body.String(), "goconvert_logout_total 1") {
		t.Fatalf("expected logout counter, got:\n%s", rec.Body.String())
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: goConvert.MetricsSnapshot{
			Counters: map[goConvert.MetricID]uint64{
				goConvert.MetricLoginSuccess:      1000,
				goConvert.MetricLoginFailure:      40,
				goConvert.MetricConversionIssued:  8000,
				goConvert.MetricConversionApplied: 7600,
				goConvert.MetricConversionStale:   400,
			},
			Histograms: map[goConvert.MetricID][]uint64{
				goConvert.MetricConversionLatency:    {10, 20, 30, 40, 50, 60, 70, 80},
				goConvert.MetricTokenExchangeLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
