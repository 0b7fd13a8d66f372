package igdb

// TokenResponse is the Twitch client-credentials grant response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Game is an IGDB game record with the fields requested by the search query.
type Game struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Summary          string  `json:"summary"`
	FirstReleaseDate int64   `json:"first_release_date"`
	TotalRating      float64 `json:"total_rating"`
	TotalRatingCount int     `json:"total_rating_count"`
	Cover            *Cover  `json:"cover"`
	Genres           []Named `json:"genres"`
}

// Cover references the cover image of a game.
type Cover struct {
	ID      int64  `json:"id"`
	ImageID string `json:"image_id"`
}

// Named is an IGDB reference expanded to its name.
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GameResult is a normalized IGDB game.
type GameResult struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Year     int      `json:"year,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	Rating   float64  `json:"rating,omitempty"`
	Votes    int      `json:"votes,omitempty"`
	CoverURL string   `json:"coverUrl,omitempty"`
}
