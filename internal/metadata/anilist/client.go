package anilist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shurcooL/graphql"

	"github.com/slipstream/posterd/internal/config"
)

// ErrAPIError wraps GraphQL and transport failures.
var ErrAPIError = errors.New("AniList API error")

const perPage = 5

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// Client queries the AniList GraphQL API.
type Client struct {
	gql    *graphql.Client
	config config.AniListConfig
	logger zerolog.Logger
}

// NewClient creates a new AniList client.
func NewClient(cfg config.AniListConfig, logger zerolog.Logger) *Client {
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	}
	return &Client{
		gql:    graphql.NewClient(cfg.Endpoint, httpClient),
		config: cfg,
		logger: logger.With().Str("component", "anilist").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "anilist"
}

// IsConfigured returns true when an endpoint is set. AniList is keyless.
func (c *Client) IsConfigured() bool {
	return c.config.Endpoint != ""
}

// SearchAnime returns anime matching the title, best match first.
// When year is positive the search is restricted to that season year.
func (c *Client) SearchAnime(ctx context.Context, search string, year int) ([]MediaResult, error) {
	var found []media
	if year > 0 {
		var q searchByYearQuery
		vars := map[string]interface{}{
			"search":     graphql.String(search),
			"seasonYear": graphql.Int(year),
			"perPage":    graphql.Int(perPage),
		}
		if err := c.gql.Query(ctx, &q, vars); err != nil {
			return nil, c.wrap(err, search)
		}
		found = q.Page.Media
	} else {
		var q searchQuery
		vars := map[string]interface{}{
			"search":  graphql.String(search),
			"perPage": graphql.Int(perPage),
		}
		if err := c.gql.Query(ctx, &q, vars); err != nil {
			return nil, c.wrap(err, search)
		}
		found = q.Page.Media
	}

	results := make([]MediaResult, 0, len(found))
	for _, m := range found {
		results = append(results, normalize(m))
	}

	c.logger.Debug().Str("query", search).Int("year", year).Int("results", len(results)).Msg("anime search completed")
	return results, nil
}

func (c *Client) wrap(err error, search string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	c.logger.Error().Err(err).Str("query", search).Msg("GraphQL query failed")
	return fmt.Errorf("%w: %v", ErrAPIError, err)
}

func normalize(m media) MediaResult {
	result := MediaResult{
		ID:     m.ID,
		Genres: m.Genres,
	}
	for _, t := range []*string{m.Title.English, m.Title.Romaji, m.Title.Native} {
		if t != nil && strings.TrimSpace(*t) != "" {
			result.Titles = append(result.Titles, strings.TrimSpace(*t))
		}
	}
	if len(result.Titles) > 0 {
		result.Title = result.Titles[0]
	}
	switch {
	case m.SeasonYear != nil:
		result.Year = *m.SeasonYear
	case m.StartDate.Year != nil:
		result.Year = *m.StartDate.Year
	}
	if m.Description != nil {
		result.Synopsis = strings.TrimSpace(htmlTag.ReplaceAllString(*m.Description, ""))
	}
	if m.AverageScore != nil {
		result.Rating = float64(*m.AverageScore) / 10
	}
	switch {
	case m.CoverImage.ExtraLarge != nil && *m.CoverImage.ExtraLarge != "":
		result.CoverURL = *m.CoverImage.ExtraLarge
	case m.CoverImage.Large != nil:
		result.CoverURL = *m.CoverImage.Large
	}
	return result
}
