package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestRecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest(http.MethodGet, "/api/content/{page}", 200, 25*time.Millisecond)
	c.RecordRequest(http.MethodGet, "/api/content/{page}", 200, 40*time.Millisecond)
	c.RecordRequest(http.MethodPut, "/api/content/{page}", 401, 5*time.Millisecond)

	if got := counterValue(t, reg, "fieldpal_http_requests_total"); got != 3 {
		t.Fatalf("requests_total = %v, want 3", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "fieldpal_http_request_duration_seconds" {
			continue
		}
		h := mf.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 3 {
			t.Fatalf("duration sample_count = %d, want 3", h.GetSampleCount())
		}
	}
}

func TestRecordPageView(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPageView("home")
	c.RecordPageView("home")
	c.RecordPageView("about")

	if got := counterValue(t, reg, "fieldpal_page_views_total"); got != 3 {
		t.Fatalf("page_views_total = %v, want 3", got)
	}
}

func TestRecordContactActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordContactSubmission()
	c.RecordContactSubmission()
	c.RecordNotificationFailure()

	if got := counterValue(t, reg, "fieldpal_contact_submissions_total"); got != 2 {
		t.Fatalf("contact_submissions_total = %v, want 2", got)
	}
	if got := counterValue(t, reg, "fieldpal_notification_failures_total"); got != 1 {
		t.Fatalf("notification_failures_total = %v, want 1", got)
	}
}

func TestHandlerServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordPageView("home")
	c.RecordContactSubmission()

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{
		"fieldpal_page_views_total",
		"fieldpal_contact_submissions_total",
	} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("response body missing %q", name)
		}
	}
}

func TestCollectorImplementsRecorder(t *testing.T) {
	var _ Recorder = NewCollector(prometheus.NewRegistry())
}
