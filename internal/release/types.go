package release

import (
	"time"

	"github.com/slipstream/posterd/internal/media"
)

// Record is a release as the poster engine sees it. Zero values mean
// "unknown" for Year, Season, Episode and the external ids.
type Record struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	TitleClean      string          `json:"titleClean"`
	TitleNormalized string          `json:"titleNormalized"`
	Category        media.Category  `json:"category"`
	MediaType       media.MediaType `json:"mediaType"`
	Year            int             `json:"year,omitempty"`
	Season          int             `json:"season,omitempty"`
	Episode         int             `json:"episode,omitempty"`

	TmdbID   int64  `json:"tmdbId,omitempty"`
	TvdbID   int64  `json:"tvdbId,omitempty"`
	TvmazeID int64  `json:"tvmazeId,omitempty"`
	IgdbID   int64  `json:"igdbId,omitempty"`
	ImdbID   string `json:"imdbId,omitempty"`

	PosterFile       string    `json:"posterFile,omitempty"`
	PosterSourcePath string    `json:"posterSourcePath,omitempty"`
	PosterProvider   string    `json:"posterProvider,omitempty"`
	PosterProviderID string    `json:"posterProviderId,omitempty"`
	PosterLang       string    `json:"posterLang,omitempty"`
	PosterSize       string    `json:"posterSize,omitempty"`
	PosterHash       string    `json:"posterHash,omitempty"`
	PosterLastError  string    `json:"posterLastError,omitempty"`
	PosterAttemptAt  time.Time `json:"posterAttemptAt,omitzero"`

	Details   *Details  `json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Details is extended metadata copied from whichever provider matched.
type Details struct {
	Provider       string   `json:"provider"`
	ProviderID     string   `json:"providerId"`
	Title          string   `json:"title,omitempty"`
	Overview       string   `json:"overview,omitempty"`
	Tagline        string   `json:"tagline,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	ReleaseDate    string   `json:"releaseDate,omitempty"`
	RuntimeMinutes int      `json:"runtimeMinutes,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	Votes          int      `json:"votes,omitempty"`
	Directors      []string `json:"directors,omitempty"`
	Writers        []string `json:"writers,omitempty"`
	Cast           []string `json:"cast,omitempty"`
}

// CreateInput describes a new release. TitleClean, Year, Season and
// Episode are derived from Title when left empty.
type CreateInput struct {
	Title      string `json:"title"`
	TitleClean string `json:"titleClean,omitempty"`
	Category   string `json:"category"`
	Year       *int   `json:"year,omitempty"`
	Season     *int   `json:"season,omitempty"`
	Episode    *int   `json:"episode,omitempty"`
	TmdbID     int64  `json:"tmdbId,omitempty"`
	TvdbID     int64  `json:"tvdbId,omitempty"`
	TvmazeID   int64  `json:"tvmazeId,omitempty"`
	IgdbID     int64  `json:"igdbId,omitempty"`
	ImdbID     string `json:"imdbId,omitempty"`
}

// Attempt is the audit trail written after every poster attempt.
type Attempt struct {
	Provider   string
	ProviderID string
	Lang       string
	Size       string
	Hash       string
}

// TitleLookup selects releases sharing a title with another release.
type TitleLookup struct {
	ExcludeID       int64
	RawTitle        string
	NormalizedTitle string
	MediaType       media.MediaType
	Year            int
}
