package tvdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/config"
)

func newTestClient(server *httptest.Server) *Client {
	cfg := config.TVDBConfig{
		APIKey:  "test-api-key",
		BaseURL: server.URL,
		Timeout: 5,
	}
	client := NewClient(cfg, zerolog.Nop())
	// Pre-set a valid token to skip authentication in tests
	client.token = "test-token"
	client.tokenExpiry = time.Now().Add(24 * time.Hour)
	return client
}

func TestClient_Name(t *testing.T) {
	client := NewClient(config.TVDBConfig{}, zerolog.Nop())
	if client.Name() != "tvdb" {
		t.Errorf("Name() = %q, want %q", client.Name(), "tvdb")
	}
}

func TestClient_IsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   bool
	}{
		{"with key", "abc123", true},
		{"without key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(config.TVDBConfig{APIKey: tt.apiKey}, zerolog.Nop())
			if got := client.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_SearchSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "Breaking Bad" {
			t.Errorf("unexpected query: %s", got)
		}
		if got := r.URL.Query().Get("year"); got != "2008" {
			t.Errorf("year = %q, want 2008", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}

		response := SearchResponse{
			Status: "success",
			Data: []SearchResult{
				{
					TvdbID:   "81189",
					Name:     "Breaking Bad",
					Type:     "series",
					Year:     "2008",
					ImageURL: "https://artworks.thetvdb.com/poster.jpg",
					RemoteIDs: []RemoteID{
						{ID: "tt0903747", SourceName: "IMDB"},
						{ID: "1396", SourceName: "TheMovieDB.com"},
					},
				},
				{ID: "movie-1", Name: "Breaking Bad Movie", Type: "movie"},
				{ID: "series-999", Name: "Breaking Badly", Type: "series", Overviews: map[string]string{"eng": "Spoof."}},
			},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := newTestClient(server)
	results, err := client.SearchSeries(context.Background(), "Breaking Bad", 2008)
	if err != nil {
		t.Fatalf("SearchSeries() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("SearchSeries() returned %d results, want 2", len(results))
	}

	first := results[0]
	if first.TvdbID != 81189 || first.Year != 2008 {
		t.Errorf("results[0] = %+v", first)
	}
	if first.ImdbID != "tt0903747" || first.TmdbID != 1396 {
		t.Errorf("remote ids = %q / %d", first.ImdbID, first.TmdbID)
	}
	if results[1].TvdbID != 999 || results[1].Overview != "Spoof." {
		t.Errorf("results[1] = %+v", results[1])
	}
}

func TestClient_SearchSeries_NoAPIKey(t *testing.T) {
	client := NewClient(config.TVDBConfig{}, zerolog.Nop())
	_, err := client.SearchSeries(context.Background(), "Breaking Bad", 0)
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("SearchSeries() error = %v, want %v", err, ErrAPIKeyMissing)
	}
}

func TestClient_Authenticate(t *testing.T) {
	var logins atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			logins.Add(1)
			var req LoginRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIKey != "test-api-key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"status":"success","data":{"token":"fresh"}}`))
		case "/search":
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(SearchResponse{})
		}
	}))
	defer server.Close()

	client := NewClient(config.TVDBConfig{APIKey: "test-api-key", BaseURL: server.URL, Timeout: 5}, zerolog.Nop())
	for i := 0; i < 2; i++ {
		if _, err := client.SearchSeries(context.Background(), "Lost", 0); err != nil {
			t.Fatalf("SearchSeries() error = %v", err)
		}
	}
	if got := logins.Load(); got != 1 {
		t.Errorf("login called %d times, want 1", got)
	}
}

func TestClient_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(config.TVDBConfig{APIKey: "bad", BaseURL: server.URL, Timeout: 5}, zerolog.Nop())
	_, err := client.SearchSeries(context.Background(), "Lost", 0)
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("SearchSeries() error = %v, want %v", err, ErrAuthFailed)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"server error", http.StatusBadGateway, ErrAPIError},
		{"unauthorized", http.StatusUnauthorized, ErrAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestClient(server)
			_, err := client.SearchSeries(context.Background(), "Lost", 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClient_SearchSeries_NotFoundIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server)
	results, err := client.SearchSeries(context.Background(), "Nothing", 0)
	if err != nil {
		t.Fatalf("SearchSeries() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("SearchSeries() returned %d results, want 0", len(results))
	}
}
