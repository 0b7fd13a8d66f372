package tvdb

// LoginRequest is the request body for TVDB authentication.
type LoginRequest struct {
	APIKey string `json:"apikey"`
}

// LoginResponse is the response from TVDB authentication.
type LoginResponse struct {
	Status string `json:"status"`
	Data   struct {
		Token string `json:"token"`
	} `json:"data"`
}

// SearchResponse is the response from TVDB search.
type SearchResponse struct {
	Status string         `json:"status"`
	Data   []SearchResult `json:"data"`
}

// SearchResult is a search result from TVDB.
type SearchResult struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Year      string            `json:"year"`
	Overview  string            `json:"overview"`
	ImageURL  string            `json:"image_url"`
	TvdbID    string            `json:"tvdb_id"`
	RemoteIDs []RemoteID        `json:"remote_ids"`
	Aliases   []string          `json:"aliases"`
	Overviews map[string]string `json:"overviews"`
}

// RemoteID represents an external ID.
type RemoteID struct {
	ID         string `json:"id"`
	Type       int    `json:"type"`
	SourceName string `json:"sourceName"`
}

// SeriesResult is a normalized TVDB series match.
type SeriesResult struct {
	TvdbID   int      `json:"tvdbId"`
	Title    string   `json:"title"`
	Aliases  []string `json:"aliases,omitempty"`
	Year     int      `json:"year,omitempty"`
	Overview string   `json:"overview,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	ImdbID   string   `json:"imdbId,omitempty"`
	TmdbID   int      `json:"tmdbId,omitempty"`
}
