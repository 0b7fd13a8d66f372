package tvmaze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/config"
)

var (
	ErrAPIError    = errors.New("TVmaze API error")
	ErrRateLimited = errors.New("TVmaze API rate limited")
	errNotFound    = errors.New("TVmaze resource not found")
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// Client is a TVmaze API client. TVmaze is keyless.
type Client struct {
	httpClient *http.Client
	config     config.TVMazeConfig
	logger     zerolog.Logger
}

// NewClient creates a new TVmaze client.
func NewClient(cfg config.TVMazeConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tvmaze").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tvmaze"
}

// IsConfigured returns true when a base URL is set.
func (c *Client) IsConfigured() bool {
	return c.config.BaseURL != ""
}

// SearchShows runs a fuzzy show search. Results keep TVmaze's own score.
func (c *Client) SearchShows(ctx context.Context, query string) ([]ShowResult, error) {
	params := url.Values{}
	params.Set("q", query)

	var response []SearchResult
	if err := c.doRequest(ctx, c.config.BaseURL+"/search/shows", params, &response); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}

	results := make([]ShowResult, 0, len(response))
	for _, item := range response {
		r := normalize(item.Show)
		r.Score = item.Score
		results = append(results, r)
	}

	c.logger.Debug().Str("query", query).Int("results", len(results)).Msg("show search completed")
	return results, nil
}

// GetShow fetches a show by TVmaze id. An unknown id yields nil without error.
func (c *Client) GetShow(ctx context.Context, id int) (*ShowResult, error) {
	var show Show
	endpoint := fmt.Sprintf("%s/shows/%d", c.config.BaseURL, id)
	if err := c.doRequest(ctx, endpoint, nil, &show); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	result := normalize(show)
	return &result, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func normalize(show Show) ShowResult {
	result := ShowResult{
		ID:      show.ID,
		Title:   show.Name,
		Type:    show.Type,
		Genres:  show.Genres,
		Summary: strings.TrimSpace(htmlTag.ReplaceAllString(show.Summary, "")),
	}
	if len(show.Premiered) >= 4 {
		result.Year, _ = strconv.Atoi(show.Premiered[:4])
	}
	if show.Rating.Average != nil {
		result.Rating = *show.Rating.Average
	}
	if show.Image != nil {
		result.ImageURL = show.Image.Original
		if result.ImageURL == "" {
			result.ImageURL = show.Image.Medium
		}
	}
	if show.Externals.TheTVDB != nil {
		result.TvdbID = *show.Externals.TheTVDB
	}
	if show.Externals.IMDB != nil {
		result.ImdbID = *show.Externals.IMDB
	}
	return result
}
