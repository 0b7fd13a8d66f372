package comicvine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("Comic Vine API key is not configured")
	ErrAPIError      = errors.New("Comic Vine API error")
	ErrRateLimited   = errors.New("Comic Vine API rate limited")
)

// status codes Comic Vine reports inside the response body
const (
	statusOK          = 1
	statusRateLimited = 107
)

// userAgent is required; Comic Vine rejects the Go default agent.
const userAgent = "posterd/1.0"

// SearchResponse is the /search envelope.
type SearchResponse struct {
	Error      string   `json:"error"`
	StatusCode int      `json:"status_code"`
	Results    []Volume `json:"results"`
}

// Volume is a comic series.
type Volume struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	StartYear     string     `json:"start_year"`
	Deck          string     `json:"deck"`
	CountOfIssues int        `json:"count_of_issues"`
	Publisher     *Publisher `json:"publisher"`
	Image         *Image     `json:"image"`
	SiteDetailURL string     `json:"site_detail_url"`
}

// Publisher of a volume.
type Publisher struct {
	Name string `json:"name"`
}

// Image holds the cover renditions.
type Image struct {
	OriginalURL string `json:"original_url"`
	MediumURL   string `json:"medium_url"`
	SuperURL    string `json:"super_url"`
}

// VolumeResult is a normalized Comic Vine volume.
type VolumeResult struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Year      int    `json:"year,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Synopsis  string `json:"synopsis,omitempty"`
	CoverURL  string `json:"coverUrl,omitempty"`
}

// Client is a Comic Vine API client.
type Client struct {
	httpClient *http.Client
	config     config.ComicVineConfig
	logger     zerolog.Logger
}

// NewClient creates a new Comic Vine client.
func NewClient(cfg config.ComicVineConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "comicvine").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "comicvine"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// SearchVolumes searches comic volumes by name.
func (c *Client) SearchVolumes(ctx context.Context, query string) ([]VolumeResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	params.Set("format", "json")
	params.Set("resources", "volume")
	params.Set("query", query)
	params.Set("limit", "10")
	params.Set("field_list", "id,name,start_year,deck,count_of_issues,publisher,image,site_detail_url")
	reqURL := fmt.Sprintf("%s/search/?%s", c.config.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("query", query).Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	var response SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	switch response.StatusCode {
	case statusOK:
	case statusRateLimited:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("%w: %s", ErrAPIError, response.Error)
	}

	results := make([]VolumeResult, 0, len(response.Results))
	for _, v := range response.Results {
		r := VolumeResult{
			ID:       v.ID,
			Title:    v.Name,
			Synopsis: v.Deck,
		}
		r.Year, _ = strconv.Atoi(v.StartYear)
		if v.Publisher != nil {
			r.Publisher = v.Publisher.Name
		}
		if v.Image != nil {
			r.CoverURL = v.Image.OriginalURL
			if r.CoverURL == "" {
				r.CoverURL = v.Image.SuperURL
			}
		}
		results = append(results, r)
	}

	c.logger.Debug().Str("query", query).Int("results", len(results)).Msg("volume search completed")
	return results, nil
}
