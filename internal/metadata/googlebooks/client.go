package googlebooks

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
	ErrAPIError    = errors.New("Google Books API error")
	ErrRateLimited = errors.New("Google Books API rate limited")
)

// VolumesResponse is the /volumes search envelope.
type VolumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume is a Google Books volume.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo holds the bibliographic data of a volume.
type VolumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	Categories          []string             `json:"categories"`
	AverageRating       float64              `json:"averageRating"`
	RatingsCount        int                  `json:"ratingsCount"`
	PageCount           int                  `json:"pageCount"`
	Language            string               `json:"language"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
	ImageLinks          *ImageLinks          `json:"imageLinks"`
}

// IndustryIdentifier is an ISBN_10/ISBN_13 entry.
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// ImageLinks are the cover renditions of a volume.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Large          string `json:"large"`
}

// BookResult is a normalized volume.
type BookResult struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	Year     int      `json:"year,omitempty"`
	Synopsis string   `json:"synopsis,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	Rating   float64  `json:"rating,omitempty"`
	Votes    int      `json:"votes,omitempty"`
	ISBN     string   `json:"isbn,omitempty"`
	Language string   `json:"language,omitempty"`
	CoverURL string   `json:"coverUrl,omitempty"`
}

// Client is a Google Books API client. The key is optional but raises quotas.
type Client struct {
	httpClient *http.Client
	config     config.GoogleBooksConfig
	logger     zerolog.Logger
}

// NewClient creates a new Google Books client.
func NewClient(cfg config.GoogleBooksConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "googlebooks").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "googlebooks"
}

// IsConfigured returns true when a base URL is set.
func (c *Client) IsConfigured() bool {
	return c.config.BaseURL != ""
}

// SearchVolumes searches by title, narrowed by ISBN when one is known.
func (c *Client) SearchVolumes(ctx context.Context, title, isbn string) ([]BookResult, error) {
	terms := make([]string, 0, 2)
	if title != "" {
		terms = append(terms, "intitle:"+title)
	}
	if isbn != "" {
		terms = append(terms, "isbn:"+isbn)
	}
	if len(terms) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", strings.Join(terms, "+"))
	params.Set("maxResults", "10")
	params.Set("printType", "books")
	if c.config.APIKey != "" {
		params.Set("key", c.config.APIKey)
	}
	reqURL := fmt.Sprintf("%s/volumes?%s", c.config.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("title", title).Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	var response VolumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]BookResult, 0, len(response.Items))
	for _, v := range response.Items {
		results = append(results, normalize(v))
	}

	c.logger.Debug().Str("title", title).Str("isbn", isbn).Int("results", len(results)).Msg("volume search completed")
	return results, nil
}

func normalize(v Volume) BookResult {
	info := v.VolumeInfo
	result := BookResult{
		ID:       v.ID,
		Title:    info.Title,
		Authors:  info.Authors,
		Synopsis: info.Description,
		Genres:   info.Categories,
		Rating:   info.AverageRating,
		Votes:    info.RatingsCount,
		Language: info.Language,
	}
	if len(info.PublishedDate) >= 4 {
		result.Year, _ = strconv.Atoi(info.PublishedDate[:4])
	}
	for _, id := range info.IndustryIdentifiers {
		if id.Type == "ISBN_13" || (id.Type == "ISBN_10" && result.ISBN == "") {
			result.ISBN = id.Identifier
		}
	}
	if links := info.ImageLinks; links != nil {
		cover := links.Large
		if cover == "" {
			cover = links.Thumbnail
		}
		if cover == "" {
			cover = links.SmallThumbnail
		}
		// Google serves http links; the https host is identical.
		result.CoverURL = strings.Replace(cover, "http://", "https://", 1)
	}
	return result
}
