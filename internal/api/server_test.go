package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/posterd/internal/activity"
	"github.com/slipstream/posterd/internal/health"
	"github.com/slipstream/posterd/internal/logger"
	"github.com/slipstream/posterd/internal/matchcache"
	"github.com/slipstream/posterd/internal/poster"
	"github.com/slipstream/posterd/internal/posterqueue"
	"github.com/slipstream/posterd/internal/release"
	"github.com/slipstream/posterd/internal/scheduler"
	"github.com/slipstream/posterd/internal/testutil"
)

type fakeLogs struct {
	entries []logger.LogEntry
	path    string
}

func (f *fakeLogs) GetRecentLogs() []logger.LogEntry { return f.entries }
func (f *fakeLogs) GetLogFilePath() string           { return f.path }

type testServer struct {
	*Server
	releases *release.Store
	queue    *posterqueue.Queue
	artDir   string
}

func setupTestServer(t *testing.T, logs LogsProvider) *testServer {
	t.Helper()

	tdb := testutil.NewTestDB(t)
	t.Cleanup(tdb.Close)
	log := tdb.Logger

	artDir := t.TempDir()
	releases := release.NewStore(tdb.Conn, &log)
	activitySvc := activity.NewService(tdb.Conn, &log)
	artwork := poster.NewArtworkStore(poster.ArtworkConfig{Dir: artDir, Timeout: 5 * time.Second}, log)
	cache := matchcache.New(tdb.Conn, &log, clockwork.NewRealClock())
	posters := poster.NewService(releases, cache, artwork, poster.Providers{}, activitySvc, poster.Config{}, &log)
	queue := posterqueue.NewQueue(10)

	sched, err := scheduler.New(&log)
	require.NoError(t, err)

	healthSvc := health.NewService(tdb.Conn, []health.Folder{{Name: "posters", Path: artDir}}, nil, queue, 10, &log)

	server := NewServer(Deps{
		Releases:  releases,
		Posters:   posters,
		Queue:     queue,
		Activity:  activitySvc,
		Health:    healthSvc,
		Scheduler: sched,
		Logs:      logs,
	}, &log)

	return &testServer{Server: server, releases: releases, queue: queue, artDir: artDir}
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	ts.Echo().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report health.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, health.StatusOK, report.Status)
	assert.NotEmpty(t, report.Items)
}

func TestSecurityHeaders(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/posters/queue", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestPosterFileIsCacheable(t *testing.T) {
	ts := setupTestServer(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(ts.artDir, "tmdb-movie-603.jpg"), []byte("jpeg"), 0o644))

	rec := ts.do(http.MethodGet, "/api/v1/posters/file/tmdb-movie-603.jpg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
	assert.Empty(t, rec.Header().Get("Pragma"))
}

func TestReleaseThenQueue(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/api/v1/releases", `{"title":"The.Matrix.1999.1080p.BluRay.x264-GRP","category":"film"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created release.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "The Matrix", created.TitleClean)

	body := `{"ids":[` + strconv.FormatInt(created.ID, 10) + `,999]}`
	rec = ts.do(http.MethodPost, "/api/v1/posters/queue", body)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp posterqueue.EnqueueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Queued)
	assert.Equal(t, []int64{999}, resp.Missing)
	assert.True(t, ts.queue.IsPending(created.ID))

	rec = ts.do(http.MethodDelete, "/api/v1/posters/queue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cleared":1}`, rec.Body.String())
}

func TestActivityList(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/activity", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestListTasks(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/system/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/v1/system/tasks/nope/run", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogs(t *testing.T) {
	logs := &fakeLogs{entries: []logger.LogEntry{
		{Level: "info", Message: "one"},
		{Level: "warn", Message: "two"},
		{Level: "info", Message: "three"},
	}}
	ts := setupTestServer(t, logs)

	rec := ts.do(http.MethodGet, "/api/v1/system/logs?level=info&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []logger.LogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "three", got[0].Message)

	rec = ts.do(http.MethodGet, "/api/v1/system/logs/download", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogsRouteAbsentWithoutProvider(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/system/logs", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil)

	ts.do(http.MethodGet, "/api/v1/posters/queue", "")
	rec := ts.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
