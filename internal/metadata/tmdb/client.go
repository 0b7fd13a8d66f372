package tmdb

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
	ErrAPIKeyMissing = errors.New("TMDB API key is not configured")
	ErrNotFound      = errors.New("TMDB resource not found")
	ErrAPIError      = errors.New("TMDB API error")
	ErrRateLimited   = errors.New("TMDB API rate limited")
)

const maxCastMembers = 10

// Client is a TMDB API client.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tmdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// SearchMovies searches for movies by query with optional year filter.
func (c *Client) SearchMovies(ctx context.Context, query string, year int) ([]NormalizedSearchResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	params := c.baseParams()
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var response SearchMoviesResponse
	if err := c.doRequest(ctx, c.config.BaseURL+"/search/movie", params, &response); err != nil {
		return nil, err
	}

	results := make([]NormalizedSearchResult, 0, len(response.Results))
	for _, m := range response.Results {
		results = append(results, NormalizedSearchResult{
			Kind:          KindMovie,
			ID:            m.ID,
			Title:         m.Title,
			OriginalTitle: m.OriginalTitle,
			Year:          yearOf(m.ReleaseDate),
			Overview:      m.Overview,
			PosterPath:    deref(m.PosterPath),
			Popularity:    m.Popularity,
			VoteCount:     m.VoteCount,
		})
	}

	c.logger.Debug().Str("query", query).Int("year", year).Int("results", len(results)).Msg("movie search completed")
	return results, nil
}

// SearchSeries searches for TV series by query with optional first-air year.
func (c *Client) SearchSeries(ctx context.Context, query string, year int) ([]NormalizedSearchResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	params := c.baseParams()
	params.Set("query", query)
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}

	var response SearchTVResponse
	if err := c.doRequest(ctx, c.config.BaseURL+"/search/tv", params, &response); err != nil {
		return nil, err
	}

	results := make([]NormalizedSearchResult, 0, len(response.Results))
	for _, tv := range response.Results {
		results = append(results, NormalizedSearchResult{
			Kind:          KindTV,
			ID:            tv.ID,
			Title:         tv.Name,
			OriginalTitle: tv.OriginalName,
			Year:          yearOf(tv.FirstAirDate),
			Overview:      tv.Overview,
			PosterPath:    deref(tv.PosterPath),
			Popularity:    tv.Popularity,
			VoteCount:     tv.VoteCount,
		})
	}

	c.logger.Debug().Str("query", query).Int("year", year).Int("results", len(results)).Msg("series search completed")
	return results, nil
}

// GetPosters lists the poster images of a movie or series.
func (c *Client) GetPosters(ctx context.Context, kind Kind, id int) ([]ImageResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	langs := "en,null"
	if c.config.Language != "" {
		langs = languageCode(c.config.Language) + "," + langs
	}
	params.Set("include_image_language", langs)

	var response ImagesResponse
	endpoint := fmt.Sprintf("%s/%s/%d/images", c.config.BaseURL, kind, id)
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}
	return response.Posters, nil
}

// PreferredPoster picks the poster to download: images in lang first, then
// textless ones, then English, then anything; ties go to the best voted.
func PreferredPoster(images []ImageResult, lang string) (ImageResult, bool) {
	if len(images) == 0 {
		return ImageResult{}, false
	}
	lang = languageCode(lang)
	rank := func(img ImageResult) int {
		switch {
		case img.Iso6391 != nil && lang != "" && *img.Iso6391 == lang:
			return 0
		case img.Iso6391 == nil:
			return 1
		case *img.Iso6391 == "en":
			return 2
		default:
			return 3
		}
	}
	sorted := make([]ImageResult, len(images))
	copy(sorted, images)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rank(sorted[i]), rank(sorted[j])
		if ri != rj {
			return ri < rj
		}
		if sorted[i].VoteAverage != sorted[j].VoteAverage {
			return sorted[i].VoteAverage > sorted[j].VoteAverage
		}
		return sorted[i].VoteCount > sorted[j].VoteCount
	})
	return sorted[0], true
}

// GetExternalIDs returns the IMDb and TVDB ids of a movie or series.
func (c *Client) GetExternalIDs(ctx context.Context, kind Kind, id int) (*ExternalIDs, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	var ids ExternalIDs
	endpoint := fmt.Sprintf("%s/%s/%d/external_ids", c.config.BaseURL, kind, id)
	if err := c.doRequest(ctx, endpoint, c.baseParams(), &ids); err != nil {
		return nil, err
	}
	return &ids, nil
}

// GetDetails returns extended metadata including credits.
func (c *Client) GetDetails(ctx context.Context, kind Kind, id int) (*NormalizedDetails, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	params := c.baseParams()
	params.Set("append_to_response", "credits,external_ids")
	endpoint := fmt.Sprintf("%s/%s/%d", c.config.BaseURL, kind, id)

	if kind == KindTV {
		var d TVDetails
		if err := c.doRequest(ctx, endpoint, params, &d); err != nil {
			return nil, err
		}
		return tvDetailsToResult(d), nil
	}

	var d MovieDetails
	if err := c.doRequest(ctx, endpoint, params, &d); err != nil {
		return nil, err
	}
	return movieDetailsToResult(d), nil
}

// GetImageURL returns a full image URL for a given path and size.
// Size options: "w92", "w154", "w185", "w342", "w500", "w780", "original"
func (c *Client) GetImageURL(path string, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, path)
}

func (c *Client) baseParams() url.Values {
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	if c.config.Language != "" {
		params.Set("language", c.config.Language)
	}
	return params
}

// doRequest performs an HTTP GET request and decodes the JSON response.
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

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Msg("TMDB API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid API key", ErrAPIError)
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func movieDetailsToResult(d MovieDetails) *NormalizedDetails {
	result := &NormalizedDetails{
		Kind:        KindMovie,
		ID:          d.ID,
		Title:       d.Title,
		Overview:    d.Overview,
		Tagline:     d.Tagline,
		Genres:      genreNames(d.Genres),
		ReleaseDate: d.ReleaseDate,
		Runtime:     d.Runtime,
		Rating:      d.VoteAverage,
		Votes:       d.VoteCount,
		ImdbID:      d.ImdbID,
	}
	if d.ExternalIDs != nil {
		result.TvdbID = d.ExternalIDs.TvdbID
		if result.ImdbID == "" {
			result.ImdbID = d.ExternalIDs.ImdbID
		}
	}
	applyCredits(result, d.Credits)
	return result
}

func tvDetailsToResult(d TVDetails) *NormalizedDetails {
	result := &NormalizedDetails{
		Kind:        KindTV,
		ID:          d.ID,
		Title:       d.Name,
		Overview:    d.Overview,
		Tagline:     d.Tagline,
		Genres:      genreNames(d.Genres),
		ReleaseDate: d.FirstAirDate,
		Rating:      d.VoteAverage,
		Votes:       d.VoteCount,
	}
	if len(d.EpisodeRunTime) > 0 {
		result.Runtime = d.EpisodeRunTime[0]
	}
	if d.ExternalIDs != nil {
		result.ImdbID = d.ExternalIDs.ImdbID
		result.TvdbID = d.ExternalIDs.TvdbID
	}
	for _, creator := range d.CreatedBy {
		result.Directors = append(result.Directors, creator.Name)
	}
	applyCredits(result, d.Credits)
	return result
}

func applyCredits(result *NormalizedDetails, credits *CreditsResponse) {
	if credits == nil {
		return
	}
	for _, crew := range credits.Crew {
		switch crew.Job {
		case "Director":
			result.Directors = appendUnique(result.Directors, crew.Name)
		case "Screenplay", "Writer", "Story":
			result.Writers = appendUnique(result.Writers, crew.Name)
		}
	}
	cast := make([]CastMember, len(credits.Cast))
	copy(cast, credits.Cast)
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Order < cast[j].Order })
	for i, member := range cast {
		if i == maxCastMembers {
			break
		}
		result.Cast = append(result.Cast, member.Name)
	}
}

func genreNames(genres []Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

func appendUnique(list []string, name string) []string {
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, _ := strconv.Atoi(date[:4])
	return year
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// languageCode turns "fr-FR" into "fr".
func languageCode(lang string) string {
	if len(lang) > 2 {
		return lang[:2]
	}
	return lang
}
