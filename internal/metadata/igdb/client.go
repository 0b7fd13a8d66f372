package igdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/config"
)

var (
	ErrCredentialsMissing = errors.New("IGDB client credentials are not configured")
	ErrAuthFailed         = errors.New("IGDB authentication failed")
	ErrAPIError           = errors.New("IGDB API error")
	ErrRateLimited        = errors.New("IGDB API rate limited")
)

const (
	searchLimit = 10
	coverSize   = "t_cover_big"
	// tokenSlack renews the token a little before Twitch expires it.
	tokenSlack = time.Minute
)

// Client is an IGDB API client authenticated with Twitch client credentials.
type Client struct {
	httpClient *http.Client
	config     config.IGDBConfig
	logger     zerolog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a new IGDB client.
func NewClient(cfg config.IGDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "igdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "igdb"
}

// IsConfigured returns true if both client credentials are set.
func (c *Client) IsConfigured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// SearchGames searches games by name. Results keep IGDB's relevance order.
func (c *Client) SearchGames(ctx context.Context, query string) ([]GameResult, error) {
	if !c.IsConfigured() {
		return nil, ErrCredentialsMissing
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf(
		`search "%s"; fields name,summary,first_release_date,total_rating,total_rating_count,cover.image_id,genres.name; limit %d;`,
		strings.ReplaceAll(query, `"`, `\"`), searchLimit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/games", strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Client-ID", c.config.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("query", query).Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: unauthorized", ErrAPIError)
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	var games []Game
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]GameResult, 0, len(games))
	for _, g := range games {
		results = append(results, c.normalize(g))
	}

	c.logger.Debug().Str("query", query).Int("results", len(results)).Msg("game search completed")
	return results, nil
}

// CoverURL builds the image URL of a cover image id.
func (c *Client) CoverURL(imageID string) string {
	if imageID == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s.jpg", c.config.ImageBaseURL, coverSize, imageID)
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	params := url.Values{}
	params.Set("client_id", c.config.ClientID)
	params.Set("client_secret", c.config.ClientSecret)
	params.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status", resp.StatusCode).Msg("Twitch token request rejected")
		return "", ErrAuthFailed
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", ErrAuthFailed
	}

	c.token = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenSlack)

	c.logger.Debug().Msg("IGDB authentication successful")
	return c.token, nil
}

func (c *Client) normalize(g Game) GameResult {
	result := GameResult{
		ID:      g.ID,
		Title:   g.Name,
		Summary: g.Summary,
		Rating:  g.TotalRating,
		Votes:   g.TotalRatingCount,
	}
	if g.FirstReleaseDate > 0 {
		result.Year = time.Unix(g.FirstReleaseDate, 0).UTC().Year()
	}
	for _, genre := range g.Genres {
		result.Genres = append(result.Genres, genre.Name)
	}
	if g.Cover != nil {
		result.CoverURL = c.CoverURL(g.Cover.ImageID)
	}
	return result
}
