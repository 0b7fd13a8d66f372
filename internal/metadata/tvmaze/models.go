package tvmaze

// SearchResult is one entry of /search/shows.
type SearchResult struct {
	Score float64 `json:"score"`
	Show  Show    `json:"show"`
}

// Show is a TVmaze show record.
type Show struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Language  string    `json:"language"`
	Genres    []string  `json:"genres"`
	Premiered string    `json:"premiered"`
	Summary   string    `json:"summary"`
	Rating    Rating    `json:"rating"`
	Image     *Image    `json:"image"`
	Externals Externals `json:"externals"`
}

// Rating is the TVmaze audience rating.
type Rating struct {
	Average *float64 `json:"average"`
}

// Image holds the show artwork URLs.
type Image struct {
	Medium   string `json:"medium"`
	Original string `json:"original"`
}

// Externals are the ids TVmaze knows on other services.
type Externals struct {
	TVRage  *int    `json:"tvrage"`
	TheTVDB *int    `json:"thetvdb"`
	IMDB    *string `json:"imdb"`
}

// ShowResult is a normalized TVmaze show.
type ShowResult struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Type     string   `json:"type,omitempty"`
	Year     int      `json:"year,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	Rating   float64  `json:"rating,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	TvdbID   int      `json:"tvdbId,omitempty"`
	ImdbID   string   `json:"imdbId,omitempty"`
	Score    float64  `json:"score,omitempty"`
}
