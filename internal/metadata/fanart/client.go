package fanart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("fanart.tv API key is not configured")
	ErrAPIError      = errors.New("fanart.tv API error")
	ErrRateLimited   = errors.New("fanart.tv API rate limited")
	errNotFound      = errors.New("fanart.tv resource not found")
)

// Image is a fanart.tv artwork entry.
type Image struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Lang  string `json:"lang"`
	Likes string `json:"likes"`
}

type movieResponse struct {
	Name         string  `json:"name"`
	TmdbID       string  `json:"tmdb_id"`
	MoviePosters []Image `json:"movieposter"`
}

type showResponse struct {
	Name      string  `json:"name"`
	TvdbID    string  `json:"thetvdb_id"`
	TVPosters []Image `json:"tvposter"`
}

// Poster is the artwork chosen for a title.
type Poster struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Lang  string `json:"lang,omitempty"`
	Likes int    `json:"likes"`
}

// Client is a fanart.tv API client.
type Client struct {
	httpClient *http.Client
	config     config.FanartConfig
	logger     zerolog.Logger
}

// NewClient creates a new fanart.tv client.
func NewClient(cfg config.FanartConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "fanart").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "fanart"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// MoviePoster returns the preferred movie poster for a TMDB id, or nil.
func (c *Client) MoviePoster(ctx context.Context, tmdbID int, lang string) (*Poster, error) {
	var resp movieResponse
	if err := c.doRequest(ctx, fmt.Sprintf("%s/movies/%d", c.config.BaseURL, tmdbID), &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return PreferredPoster(resp.MoviePosters, lang), nil
}

// TVPoster returns the preferred series poster for a TVDB id, or nil.
func (c *Client) TVPoster(ctx context.Context, tvdbID int, lang string) (*Poster, error) {
	var resp showResponse
	if err := c.doRequest(ctx, fmt.Sprintf("%s/tv/%d", c.config.BaseURL, tvdbID), &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return PreferredPoster(resp.TVPosters, lang), nil
}

// PreferredPoster orders by language (lang, then English, then textless "00",
// then others) and then by likes.
func PreferredPoster(images []Image, lang string) *Poster {
	if len(images) == 0 {
		return nil
	}
	rank := func(l string) int {
		switch {
		case lang != "" && l == lang:
			return 0
		case l == "en":
			return 1
		case l == "00" || l == "":
			return 2
		default:
			return 3
		}
	}
	posters := make([]Poster, 0, len(images))
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		likes, _ := strconv.Atoi(img.Likes)
		posters = append(posters, Poster{ID: img.ID, URL: img.URL, Lang: img.Lang, Likes: likes})
	}
	if len(posters) == 0 {
		return nil
	}
	sort.SliceStable(posters, func(i, j int) bool {
		ri, rj := rank(posters[i].Lang), rank(posters[j].Lang)
		if ri != rj {
			return ri < rj
		}
		return posters[i].Likes > posters[j].Likes
	})
	return &posters[0]
}

func (c *Client) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("api_key", c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
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
