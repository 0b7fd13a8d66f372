package deezer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/config"
)

var (
	ErrAPIError    = errors.New("Deezer API error")
	ErrRateLimited = errors.New("Deezer API quota exceeded")
)

// quotaExceeded is the error code Deezer returns in a 200 body when throttling.
const quotaExceeded = 4

// SearchResponse is the /search/album envelope.
type SearchResponse struct {
	Data  []Album    `json:"data"`
	Total int        `json:"total"`
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Album is a Deezer album search hit.
type Album struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Cover      string `json:"cover"`
	CoverBig   string `json:"cover_big"`
	CoverXL    string `json:"cover_xl"`
	RecordType string `json:"record_type"`
	Artist     Artist `json:"artist"`
	NbTracks   int    `json:"nb_tracks"`
}

// Artist is the album artist.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AlbumResult is a normalized Deezer album.
type AlbumResult struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist,omitempty"`
	CoverURL string `json:"coverUrl,omitempty"`
}

// Client is a Deezer public API client. Deezer search is keyless.
type Client struct {
	httpClient *http.Client
	config     config.DeezerConfig
	logger     zerolog.Logger
}

// NewClient creates a new Deezer client.
func NewClient(cfg config.DeezerConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "deezer").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "deezer"
}

// IsConfigured returns true when a base URL is set.
func (c *Client) IsConfigured() bool {
	return c.config.BaseURL != ""
}

// SearchAlbums searches albums. With an artist the query uses Deezer's
// advanced syntax, otherwise the album title is searched as free text.
func (c *Client) SearchAlbums(ctx context.Context, artist, album string) ([]AlbumResult, error) {
	query := album
	if artist != "" {
		query = fmt.Sprintf(`artist:"%s" album:"%s"`, quote(artist), quote(album))
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "10")
	reqURL := fmt.Sprintf("%s/search/album?%s", c.config.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("query", query).Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	var response SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Error != nil {
		if response.Error.Code == quotaExceeded {
			return nil, ErrRateLimited
		}
		return nil, fmt.Errorf("%w: %s", ErrAPIError, response.Error.Message)
	}

	results := make([]AlbumResult, 0, len(response.Data))
	for _, a := range response.Data {
		cover := a.CoverXL
		if cover == "" {
			cover = a.CoverBig
		}
		results = append(results, AlbumResult{
			ID:       a.ID,
			Title:    a.Title,
			Artist:   a.Artist.Name,
			CoverURL: cover,
		})
	}

	c.logger.Debug().Str("query", query).Int("results", len(results)).Msg("album search completed")
	return results, nil
}

func quote(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}
