package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit_Idempotent(t *testing.T) {
	Init()
	first := posterFetchesTotal
	Init()
	if posterFetchesTotal != first {
		t.Fatal("Init() replaced collectors on second call")
	}
}

func TestObserveFetch(t *testing.T) {
	Init()
	before := testutil.ToFloat64(posterFetchesTotal.WithLabelValues("video", "404"))
	ObserveFetch("video", 404)
	ObserveFetch("video", 404)
	if got := testutil.ToFloat64(posterFetchesTotal.WithLabelValues("video", "404")); got != before+2 {
		t.Errorf("video/404 = %v, want %v", got, before+2)
	}
}

func TestSetQueueDepth(t *testing.T) {
	SetQueueDepth(17)
	if got := testutil.ToFloat64(posterQueueDepth); got != 17 {
		t.Errorf("queue depth = %v, want 17", got)
	}
}

func TestHandler_ExposesCollectors(t *testing.T) {
	ObserveJob("success")
	ObserveAttempt()
	ObserveCacheHit("fingerprint")
	ObserveProvider("tmdb", "match")
	ObserveHTTPRequest(http.MethodGet, "/api/v1/health", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		"posterd_jobs_total",
		"posterd_attempts_total",
		"posterd_match_cache_hits_total",
		"posterd_provider_requests_total",
		"http_request_duration_seconds",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
