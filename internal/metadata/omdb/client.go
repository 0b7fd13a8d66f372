package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("OMDb API key is not configured")
	ErrAPIError      = errors.New("OMDb API error")
)

// Client is an OMDb API client.
type Client struct {
	httpClient *http.Client
	config     config.OMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new OMDb client.
func NewClient(cfg config.OMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "omdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "omdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// GetByIMDbID fetches plot, credits and ratings for a title by IMDb ID.
// A title OMDb does not know yields nil without error.
func (c *Client) GetByIMDbID(ctx context.Context, imdbID string) (*Title, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if imdbID == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("apikey", c.config.APIKey)
	params.Set("i", imdbID)
	params.Set("plot", "short")

	reqURL := fmt.Sprintf("%s?%s", c.config.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("imdbId", imdbID).Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	var omdbResp Response
	if err := json.NewDecoder(resp.Body).Decode(&omdbResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if omdbResp.Response == "False" {
		if omdbResp.Error == "Movie not found!" || omdbResp.Error == "Incorrect IMDb ID." {
			return nil, nil
		}
		c.logger.Warn().Str("error", omdbResp.Error).Str("imdbId", imdbID).Msg("OMDb API returned error")
		return nil, fmt.Errorf("%w: %s", ErrAPIError, omdbResp.Error)
	}

	return c.normalize(omdbResp), nil
}

func (c *Client) normalize(resp Response) *Title {
	result := &Title{
		ImdbID:    resp.ImdbID,
		Plot:      known(resp.Plot),
		Genres:    splitList(resp.Genre),
		Directors: splitList(resp.Director),
		Writers:   splitList(resp.Writer),
		Actors:    splitList(resp.Actors),
		Awards:    known(resp.Awards),
	}

	if rating, err := strconv.ParseFloat(known(resp.ImdbRating), 64); err == nil {
		result.ImdbRating = rating
	}

	// Format: "1,234,567"
	if votes, err := strconv.Atoi(strings.ReplaceAll(known(resp.ImdbVotes), ",", "")); err == nil {
		result.ImdbVotes = votes
	}

	if score, err := strconv.Atoi(known(resp.Metascore)); err == nil {
		result.Metacritic = score
	}

	// Format: "117 min"
	if minutes, err := strconv.Atoi(strings.TrimSuffix(known(resp.Runtime), " min")); err == nil {
		result.RuntimeMinutes = minutes
	}

	for _, rating := range resp.Ratings {
		if rating.Source == "Rotten Tomatoes" {
			if score, err := strconv.Atoi(strings.TrimSuffix(rating.Value, "%")); err == nil {
				result.RottenTomatoes = score
			}
		}
	}

	c.logger.Debug().
		Str("imdbId", resp.ImdbID).
		Float64("imdbRating", result.ImdbRating).
		Int("imdbVotes", result.ImdbVotes).
		Msg("normalized OMDb record")

	return result
}

// known maps OMDb's "N/A" placeholder to empty.
func known(s string) string {
	if s == "N/A" {
		return ""
	}
	return strings.TrimSpace(s)
}

func splitList(s string) []string {
	s = known(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
