package poster

import (
	"context"

	"github.com/slipstream/posterd/internal/activity"
	"github.com/slipstream/posterd/internal/metadata/anilist"
	"github.com/slipstream/posterd/internal/metadata/comicvine"
	"github.com/slipstream/posterd/internal/metadata/deezer"
	"github.com/slipstream/posterd/internal/metadata/fanart"
	"github.com/slipstream/posterd/internal/metadata/googlebooks"
	"github.com/slipstream/posterd/internal/metadata/igdb"
	"github.com/slipstream/posterd/internal/metadata/omdb"
	"github.com/slipstream/posterd/internal/metadata/tmdb"
	"github.com/slipstream/posterd/internal/metadata/tvdb"
	"github.com/slipstream/posterd/internal/metadata/tvmaze"
	"github.com/slipstream/posterd/internal/release"
)

// ReleaseStore is the persistence the engine needs from the release catalog.
type ReleaseStore interface {
	GetForPoster(ctx context.Context, id int64) (*release.Record, error)
	SavePoster(ctx context.Context, id int64, externalID, sourcePath, localFile string) error
	SaveTvdbID(ctx context.Context, id, tvdbID int64) error
	SaveTmdbID(ctx context.Context, id, tmdbID int64) error
	SaveTvmazeID(ctx context.Context, id, tvmazeID int64) error
	SaveIgdbID(ctx context.Context, id, igdbID int64) error
	UpdateExternalDetails(ctx context.Context, id int64, d release.Details) error
	UpdatePosterAttemptSuccess(ctx context.Context, id int64, a release.Attempt) error
	UpdatePosterAttemptFailure(ctx context.Context, id int64, provider, providerID, reason string) error
	GetPosterForTitleClean(ctx context.Context, lookup release.TitleLookup, keep func(*release.Record) bool) (*release.Record, error)
	ClearAllPosterReferences(ctx context.Context) (int64, error)
}

// ActivityLogger records user-visible events.
type ActivityLogger interface {
	Add(ctx context.Context, sourceID int64, level activity.Level, eventType activity.EventType, message string, data any)
}

// TMDBClient is the primary movie and series catalog.
type TMDBClient interface {
	IsConfigured() bool
	SearchMovies(ctx context.Context, query string, year int) ([]tmdb.NormalizedSearchResult, error)
	SearchSeries(ctx context.Context, query string, year int) ([]tmdb.NormalizedSearchResult, error)
	GetPosters(ctx context.Context, kind tmdb.Kind, id int) ([]tmdb.ImageResult, error)
	GetExternalIDs(ctx context.Context, kind tmdb.Kind, id int) (*tmdb.ExternalIDs, error)
	GetDetails(ctx context.Context, kind tmdb.Kind, id int) (*tmdb.NormalizedDetails, error)
	GetImageURL(path, size string) string
}

// TVDBClient resolves TVDB ids by name.
type TVDBClient interface {
	IsConfigured() bool
	SearchSeries(ctx context.Context, query string, year int) ([]tvdb.SeriesResult, error)
}

// OMDBClient fills details TMDB leaves empty.
type OMDBClient interface {
	IsConfigured() bool
	GetByIMDbID(ctx context.Context, imdbID string) (*omdb.Title, error)
}

// TVMazeClient is the TV guide.
type TVMazeClient interface {
	SearchShows(ctx context.Context, query string) ([]tvmaze.ShowResult, error)
	GetShow(ctx context.Context, id int) (*tvmaze.ShowResult, error)
}

// IGDBClient finds game covers.
type IGDBClient interface {
	IsConfigured() bool
	SearchGames(ctx context.Context, query string) ([]igdb.GameResult, error)
}

// AniListClient finds anime covers.
type AniListClient interface {
	SearchAnime(ctx context.Context, search string, year int) ([]anilist.MediaResult, error)
}

// DeezerClient finds album covers.
type DeezerClient interface {
	SearchAlbums(ctx context.Context, artist, album string) ([]deezer.AlbumResult, error)
}

// GoogleBooksClient finds book covers.
type GoogleBooksClient interface {
	SearchVolumes(ctx context.Context, title, isbn string) ([]googlebooks.BookResult, error)
}

// ComicVineClient finds comic covers.
type ComicVineClient interface {
	IsConfigured() bool
	SearchVolumes(ctx context.Context, query string) ([]comicvine.VolumeResult, error)
}

// FanartClient is the artwork aggregator keyed by catalog ids.
type FanartClient interface {
	IsConfigured() bool
	MoviePoster(ctx context.Context, tmdbID int, lang string) (*fanart.Poster, error)
	TVPoster(ctx context.Context, tvdbID int, lang string) (*fanart.Poster, error)
}

// Providers bundles the provider clients. A nil client disables its branch step.
type Providers struct {
	TMDB        TMDBClient
	TVDB        TVDBClient
	OMDB        OMDBClient
	TVMaze      TVMazeClient
	IGDB        IGDBClient
	AniList     AniListClient
	Deezer      DeezerClient
	GoogleBooks GoogleBooksClient
	ComicVine   ComicVineClient
	Fanart      FanartClient
}
