package poster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/posterd/internal/activity"
	"github.com/slipstream/posterd/internal/matchcache"
	"github.com/slipstream/posterd/internal/metadata/anilist"
	"github.com/slipstream/posterd/internal/metadata/comicvine"
	"github.com/slipstream/posterd/internal/metadata/deezer"
	"github.com/slipstream/posterd/internal/metadata/fanart"
	"github.com/slipstream/posterd/internal/metadata/googlebooks"
	"github.com/slipstream/posterd/internal/metadata/igdb"
	"github.com/slipstream/posterd/internal/metadata/tmdb"
	"github.com/slipstream/posterd/internal/metadata/tvmaze"
	"github.com/slipstream/posterd/internal/release"
	"github.com/slipstream/posterd/internal/testutil"
)

var posterBytes = []byte("\xff\xd8\xff\xe0 fake jpeg body")

type testEnv struct {
	svc      *Service
	releases *release.Store
	cache    *matchcache.Cache
	artwork  *ArtworkStore
	images   *httptest.Server
}

func newTestEnv(t *testing.T, providers func(images string) Providers) *testEnv {
	t.Helper()

	tdb := testutil.NewTestDB(t)
	t.Cleanup(tdb.Close)

	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(posterBytes)
	}))
	t.Cleanup(images.Close)

	logger := tdb.Logger
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	env := &testEnv{
		releases: release.NewStore(tdb.Conn, &logger),
		cache:    matchcache.New(tdb.Conn, &logger, clock),
		artwork:  NewArtworkStore(ArtworkConfig{Dir: t.TempDir(), Timeout: 5 * time.Second}, logger),
		images:   images,
	}
	var p Providers
	if providers != nil {
		p = providers(images.URL)
	}
	env.svc = NewService(env.releases, env.cache, env.artwork, p, activity.NewService(tdb.Conn, &logger),
		Config{PreferredLanguage: "fr-FR", FailureReasonMax: 200}, &logger)
	return env
}

func (e *testEnv) create(t *testing.T, in release.CreateInput) *release.Record {
	t.Helper()
	rec, err := e.releases.Create(context.Background(), in)
	require.NoError(t, err)
	return rec
}

func (e *testEnv) get(t *testing.T, id int64) *release.Record {
	t.Helper()
	rec, err := e.releases.Get(context.Background(), id)
	require.NoError(t, err)
	return rec
}

// callLog counts provider calls by method name.
type callLog struct {
	mu    sync.Mutex
	calls map[string]int
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.calls == nil {
		l.calls = make(map[string]int)
	}
	l.calls[name]++
}

func (l *callLog) count(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[name]
}

func (l *callLog) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		n += c
	}
	return n
}

type fakeTMDB struct {
	callLog
	imageBase string
	movies    []tmdb.NormalizedSearchResult
	series    []tmdb.NormalizedSearchResult
	posters   []tmdb.ImageResult
	external  *tmdb.ExternalIDs
	details   *tmdb.NormalizedDetails
	err       error
}

func (f *fakeTMDB) IsConfigured() bool { return true }

func (f *fakeTMDB) SearchMovies(_ context.Context, _ string, _ int) ([]tmdb.NormalizedSearchResult, error) {
	f.add("SearchMovies")
	return f.movies, f.err
}

func (f *fakeTMDB) SearchSeries(_ context.Context, _ string, _ int) ([]tmdb.NormalizedSearchResult, error) {
	f.add("SearchSeries")
	return f.series, f.err
}

func (f *fakeTMDB) GetPosters(_ context.Context, _ tmdb.Kind, _ int) ([]tmdb.ImageResult, error) {
	f.add("GetPosters")
	return f.posters, nil
}

func (f *fakeTMDB) GetExternalIDs(_ context.Context, _ tmdb.Kind, _ int) (*tmdb.ExternalIDs, error) {
	f.add("GetExternalIDs")
	return f.external, nil
}

func (f *fakeTMDB) GetDetails(_ context.Context, _ tmdb.Kind, _ int) (*tmdb.NormalizedDetails, error) {
	f.add("GetDetails")
	return f.details, nil
}

func (f *fakeTMDB) GetImageURL(path, size string) string {
	return f.imageBase + "/" + size + path
}

type fakeTVMaze struct {
	callLog
	shows []tvmaze.ShowResult
	show  *tvmaze.ShowResult
}

func (f *fakeTVMaze) SearchShows(_ context.Context, _ string) ([]tvmaze.ShowResult, error) {
	f.add("SearchShows")
	return f.shows, nil
}

func (f *fakeTVMaze) GetShow(_ context.Context, _ int) (*tvmaze.ShowResult, error) {
	f.add("GetShow")
	return f.show, nil
}

type fakeFanart struct {
	callLog
	movie *fanart.Poster
	tv    *fanart.Poster
}

func (f *fakeFanart) IsConfigured() bool { return true }

func (f *fakeFanart) MoviePoster(_ context.Context, _ int, _ string) (*fanart.Poster, error) {
	f.add("MoviePoster")
	return f.movie, nil
}

func (f *fakeFanart) TVPoster(_ context.Context, _ int, _ string) (*fanart.Poster, error) {
	f.add("TVPoster")
	return f.tv, nil
}

type fakeIGDB struct {
	callLog
	query string
	games []igdb.GameResult
}

func (f *fakeIGDB) IsConfigured() bool { return true }

func (f *fakeIGDB) SearchGames(_ context.Context, query string) ([]igdb.GameResult, error) {
	f.add("SearchGames")
	f.query = query
	return f.games, nil
}

type fakeAniList struct {
	results []anilist.MediaResult
}

func (f *fakeAniList) SearchAnime(_ context.Context, _ string, _ int) ([]anilist.MediaResult, error) {
	return f.results, nil
}

type fakeGoogleBooks struct {
	title, isbn string
	results     []googlebooks.BookResult
}

func (f *fakeGoogleBooks) SearchVolumes(_ context.Context, title, isbn string) ([]googlebooks.BookResult, error) {
	f.title, f.isbn = title, isbn
	return f.results, nil
}

type fakeDeezer struct {
	artist, album string
	results       []deezer.AlbumResult
}

func (f *fakeDeezer) SearchAlbums(_ context.Context, artist, album string) ([]deezer.AlbumResult, error) {
	f.artist, f.album = artist, album
	return f.results, nil
}

type fakeComicVine struct {
	query   string
	results []comicvine.VolumeResult
}

func (f *fakeComicVine) IsConfigured() bool { return true }

func (f *fakeComicVine) SearchVolumes(_ context.Context, query string) ([]comicvine.VolumeResult, error) {
	f.query = query
	return f.results, nil
}
