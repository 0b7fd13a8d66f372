package tmdb

// SearchMoviesResponse is the response from TMDB movie search.
type SearchMoviesResponse struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MovieResult is a movie from TMDB search results.
type MovieResult struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	PosterPath    *string `json:"poster_path"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Popularity    float64 `json:"popularity"`
}

// SearchTVResponse is the response from TMDB TV search.
type SearchTVResponse struct {
	Page         int        `json:"page"`
	Results      []TVResult `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// TVResult is a TV series from TMDB search results.
type TVResult struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	Overview     string  `json:"overview"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   *string `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
}

// MovieDetails is the detailed movie info from TMDB.
type MovieDetails struct {
	ID            int              `json:"id"`
	Title         string           `json:"title"`
	OriginalTitle string           `json:"original_title"`
	Overview      string           `json:"overview"`
	Tagline       string           `json:"tagline"`
	ReleaseDate   string           `json:"release_date"`
	Runtime       int              `json:"runtime"`
	VoteAverage   float64          `json:"vote_average"`
	VoteCount     int              `json:"vote_count"`
	ImdbID        string           `json:"imdb_id"`
	Genres        []Genre          `json:"genres"`
	Credits       *CreditsResponse `json:"credits,omitempty"`
	ExternalIDs   *ExternalIDs     `json:"external_ids,omitempty"`
}

// TVDetails is the detailed TV series info from TMDB.
type TVDetails struct {
	ID             int              `json:"id"`
	Name           string           `json:"name"`
	OriginalName   string           `json:"original_name"`
	Overview       string           `json:"overview"`
	Tagline        string           `json:"tagline"`
	FirstAirDate   string           `json:"first_air_date"`
	EpisodeRunTime []int            `json:"episode_run_time"`
	VoteAverage    float64          `json:"vote_average"`
	VoteCount      int              `json:"vote_count"`
	Genres         []Genre          `json:"genres"`
	CreatedBy      []TVCreator      `json:"created_by,omitempty"`
	Credits        *CreditsResponse `json:"credits,omitempty"`
	ExternalIDs    *ExternalIDs     `json:"external_ids,omitempty"`
}

// Genre represents a genre from TMDB.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TVCreator represents a series creator from TMDB TV details.
type TVCreator struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ExternalIDs contains external IDs from TMDB.
type ExternalIDs struct {
	ImdbID string `json:"imdb_id"`
	TvdbID int    `json:"tvdb_id"`
}

// CreditsResponse is the credits block appended to details.
type CreditsResponse struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastMember represents a cast member from TMDB credits.
type CastMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewMember represents a crew member from TMDB credits.
type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// ImagesResponse is the response from TMDB /movie/{id}/images or /tv/{id}/images.
type ImagesResponse struct {
	Posters []ImageResult `json:"posters"`
}

// ImageResult represents a single image from TMDB images endpoint.
type ImageResult struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Iso6391     *string `json:"iso_639_1"`
}

// ErrorResponse is an error from the TMDB API.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

// Kind distinguishes the two TMDB catalogs.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

// NormalizedSearchResult is one movie or series candidate.
type NormalizedSearchResult struct {
	Kind          Kind    `json:"kind"`
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"originalTitle,omitempty"`
	Year          int     `json:"year,omitempty"`
	Overview      string  `json:"overview,omitempty"`
	PosterPath    string  `json:"posterPath,omitempty"`
	Popularity    float64 `json:"popularity"`
	VoteCount     int     `json:"voteCount"`
}

// NormalizedDetails is the extended metadata of one work.
type NormalizedDetails struct {
	Kind        Kind     `json:"kind"`
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview,omitempty"`
	Tagline     string   `json:"tagline,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	Runtime     int      `json:"runtime,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Votes       int      `json:"votes,omitempty"`
	ImdbID      string   `json:"imdbId,omitempty"`
	TvdbID      int      `json:"tvdbId,omitempty"`
	Directors   []string `json:"directors,omitempty"`
	Writers     []string `json:"writers,omitempty"`
	Cast        []string `json:"cast,omitempty"`
}
