package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(DraftSaves.WithLabelValues(OutcomeCreated))
	DraftSaves.WithLabelValues(OutcomeCreated).Inc()
	if got := testutil.ToFloat64(DraftSaves.WithLabelValues(OutcomeCreated)); got != before+1 {
		t.Errorf("Expected counter to increase by one, got %v -> %v", before, got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	StrayDrafts.WithLabelValues("publish").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"quill_drafts_stray_total", "go_goroutines"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("Expected %s in exposition", name)
		}
	}
}
