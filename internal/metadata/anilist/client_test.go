package anilist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/posterd/internal/config"
)

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func newTestClient(t *testing.T, handler func(gqlRequest) string) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(handler(req)))
	}))
	t.Cleanup(server.Close)
	return NewClient(config.AniListConfig{Endpoint: server.URL, Timeout: 5}, zerolog.Nop())
}

func TestClient_SearchAnime(t *testing.T) {
	client := newTestClient(t, func(req gqlRequest) string {
		assert.Equal(t, "Cowboy Bebop", req.Variables["search"])
		assert.NotContains(t, req.Query, "seasonYear")
		return `{"data":{"Page":{"media":[{
			"id":1,
			"title":{"romaji":"Cowboy Bebop","english":"Cowboy Bebop","native":"カウボーイビバップ"},
			"description":"Bounty hunters<br>in space.",
			"genres":["Action","Sci-Fi"],
			"averageScore":86,
			"seasonYear":1998,
			"startDate":{"year":1998},
			"coverImage":{"extraLarge":"https://s4.anilist.co/xl.jpg","large":"https://s4.anilist.co/l.jpg"}
		}]}}}`
	})

	results, err := client.SearchAnime(context.Background(), "Cowboy Bebop", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, 1, r.ID)
	assert.Equal(t, "Cowboy Bebop", r.Title)
	assert.Len(t, r.Titles, 3)
	assert.Equal(t, 1998, r.Year)
	assert.Equal(t, "Bounty huntersin space.", r.Synopsis)
	assert.InDelta(t, 8.6, r.Rating, 0.001)
	assert.Equal(t, "https://s4.anilist.co/xl.jpg", r.CoverURL)
}

func TestClient_SearchAnime_WithYear(t *testing.T) {
	client := newTestClient(t, func(req gqlRequest) string {
		assert.True(t, strings.Contains(req.Query, "seasonYear"))
		assert.EqualValues(t, 2019, req.Variables["seasonYear"])
		return `{"data":{"Page":{"media":[{"id":2,"title":{"romaji":"Dororo"},"coverImage":{"large":"https://l.jpg"},"startDate":{"year":2019}}]}}}`
	})

	results, err := client.SearchAnime(context.Background(), "Dororo", 2019)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Dororo", results[0].Title)
	assert.Equal(t, 2019, results[0].Year)
	assert.Equal(t, "https://l.jpg", results[0].CoverURL)
}

func TestClient_SearchAnime_Error(t *testing.T) {
	client := newTestClient(t, func(gqlRequest) string {
		return `{"errors":[{"message":"Too Many Requests."}],"data":null}`
	})

	_, err := client.SearchAnime(context.Background(), "x", 0)
	assert.ErrorIs(t, err, ErrAPIError)
}
