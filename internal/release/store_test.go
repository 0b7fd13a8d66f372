package release

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/posterd/internal/media"
	"github.com/slipstream/posterd/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	t.Cleanup(tdb.Close)
	return NewStore(tdb.Conn, &tdb.Logger)
}

func TestStore_CreateDerivesFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Create(ctx, CreateInput{Title: "The Office", Category: "Serie", Year: testutil.IntPtr(2005)})
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.Equal(t, "The Office", rec.TitleClean)
	assert.Equal(t, "the office", rec.TitleNormalized)
	assert.Equal(t, media.CategorySerie, rec.Category)
	assert.Equal(t, media.MediaTypeSeries, rec.MediaType)
	assert.Equal(t, 2005, rec.Year)
	assert.Empty(t, rec.PosterFile)

	book, err := store.Create(ctx, CreateInput{Title: "Dune 9780441013593", Category: "Book"})
	require.NoError(t, err)
	assert.Equal(t, "Dune 9780441013593", book.TitleClean)
	assert.Equal(t, media.MediaTypeBook, book.MediaType)
}

func TestStore_CreateRejectsEmptyTitle(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(context.Background(), CreateInput{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidTitle)
}

func TestStore_GetForPosterMissing(t *testing.T) {
	store := newTestStore(t)
	rec, err := store.GetForPoster(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = store.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PosterAudit(t *testing.T) {
	store := newTestStore(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	rec, err := store.Create(ctx, CreateInput{Title: "Inception", Category: "Film", Year: testutil.IntPtr(2010)})
	require.NoError(t, err)

	require.NoError(t, store.UpdatePosterAttemptFailure(ctx, rec.ID, "tmdb", "", "no tmdb match"))
	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "no tmdb match", got.PosterLastError)
	assert.Equal(t, "tmdb", got.PosterProvider)
	assert.True(t, got.PosterAttemptAt.Equal(fixed))

	require.NoError(t, store.SavePoster(ctx, rec.ID, "27205", "/poster.jpg", "tmdb-27205-w500.jpg"))
	require.NoError(t, store.UpdatePosterAttemptSuccess(ctx, rec.ID, Attempt{
		Provider: "tmdb", ProviderID: "27205", Lang: "en", Size: "w500", Hash: "abc",
	}))
	got, err = store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "tmdb-27205-w500.jpg", got.PosterFile)
	assert.Equal(t, "/poster.jpg", got.PosterSourcePath)
	assert.Equal(t, "abc", got.PosterHash)
	assert.Empty(t, got.PosterLastError)

	n, err := store.ClearAllPosterReferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, err = store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PosterFile)
	assert.True(t, got.PosterAttemptAt.IsZero())
}

func TestStore_ExternalIDsAndDetails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Create(ctx, CreateInput{Title: "Dark", Category: "Serie"})
	require.NoError(t, err)

	require.NoError(t, store.SaveTmdbID(ctx, rec.ID, 70523))
	require.NoError(t, store.SaveTvdbID(ctx, rec.ID, 334824))
	require.NoError(t, store.UpdateExternalDetails(ctx, rec.ID, Details{
		Provider:   "tmdb",
		ProviderID: "70523",
		Overview:   "A missing child sets four families on a frantic hunt.",
		Genres:     []string{"Drama", "Mystery"},
		Rating:     8.4,
		Votes:      1200,
	}))
	// A later partial update keeps what it does not mention.
	require.NoError(t, store.UpdateExternalDetails(ctx, rec.ID, Details{Provider: "tmdb", ProviderID: "70523", Tagline: "Everything is connected"}))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70523), got.TmdbID)
	assert.Equal(t, int64(334824), got.TvdbID)
	require.NotNil(t, got.Details)
	assert.Equal(t, []string{"Drama", "Mystery"}, got.Details.Genres)
	assert.Equal(t, "Everything is connected", got.Details.Tagline)
	assert.Equal(t, 1200, got.Details.Votes)
	assert.Contains(t, got.Details.Overview, "missing child")
}

func TestStore_GetPosterForTitleClean(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, CreateInput{Title: "Breaking Bad", Category: "Serie", Season: testutil.IntPtr(1)})
	require.NoError(t, err)
	second, err := store.Create(ctx, CreateInput{Title: "Breaking Bad", Category: "Serie", Season: testutil.IntPtr(2)})
	require.NoError(t, err)
	other, err := store.Create(ctx, CreateInput{Title: "Breaking Bad", Category: "Film"})
	require.NoError(t, err)

	require.NoError(t, store.SavePoster(ctx, first.ID, "", "", "tmdb-1396-w500.jpg"))
	require.NoError(t, store.SavePoster(ctx, other.ID, "", "", "tmdb-9999-w500.jpg"))

	got, err := store.GetPosterForTitleClean(ctx, TitleLookup{
		ExcludeID:       second.ID,
		RawTitle:        "breaking bad",
		NormalizedTitle: "breaking bad",
		MediaType:       media.MediaTypeSeries,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	got, err = store.GetPosterForTitleClean(ctx, TitleLookup{
		ExcludeID:       second.ID,
		NormalizedTitle: "breaking bad",
		MediaType:       media.MediaTypeSeries,
	}, func(*Record) bool { return false })
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_GetPosterForTitleCleanYearFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	donor, err := store.Create(ctx, CreateInput{Title: "Dune", Category: "Film", Year: testutil.IntPtr(2021)})
	require.NoError(t, err)
	require.NoError(t, store.SavePoster(ctx, donor.ID, "", "", "tmdb-438631-w500.jpg"))

	lookup := TitleLookup{RawTitle: "Dune", NormalizedTitle: "dune", MediaType: media.MediaTypeMovie}

	got, err := store.GetPosterForTitleClean(ctx, lookup, nil)
	require.NoError(t, err)
	require.NotNil(t, got, "unknown year matches any year")
	assert.Equal(t, donor.ID, got.ID)

	lookup.Year = 2021
	got, err = store.GetPosterForTitleClean(ctx, lookup, nil)
	require.NoError(t, err)
	require.NotNil(t, got)

	lookup.Year = 1984
	got, err = store.GetPosterForTitleClean(ctx, lookup, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_GetPosterForTitleCleanPagesPastRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	donor, err := store.Create(ctx, CreateInput{Title: "Dark", Category: "Serie", Year: testutil.IntPtr(2017)})
	require.NoError(t, err)
	require.NoError(t, store.SavePoster(ctx, donor.ID, "", "", "tmdb-70523-w500.jpg"))
	require.NoError(t, store.UpdatePosterAttemptSuccess(ctx, donor.ID, Attempt{Provider: "tmdb"}))

	for i := 0; i < 2*titleCandidatePage+5; i++ {
		now = now.Add(time.Minute)
		rec, err := store.Create(ctx, CreateInput{Title: "Dark", Category: "Serie", Year: testutil.IntPtr(2017)})
		require.NoError(t, err)
		require.NoError(t, store.SavePoster(ctx, rec.ID, "", "", "gone.jpg"))
		require.NoError(t, store.UpdatePosterAttemptSuccess(ctx, rec.ID, Attempt{Provider: "tmdb"}))
	}

	target, err := store.Create(ctx, CreateInput{Title: "Dark", Category: "Serie", Year: testutil.IntPtr(2017)})
	require.NoError(t, err)

	got, err := store.GetPosterForTitleClean(ctx, TitleLookup{
		ExcludeID:       target.ID,
		RawTitle:        "Dark",
		NormalizedTitle: "dark",
		MediaType:       media.MediaTypeSeries,
		Year:            2017,
	}, func(r *Record) bool { return r.PosterFile != "gone.jpg" })
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, donor.ID, got.ID)
}

func TestStore_ListMissingPosters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	a, err := store.Create(ctx, CreateInput{Title: "Alien", Category: "Film"})
	require.NoError(t, err)
	b, err := store.Create(ctx, CreateInput{Title: "Aliens", Category: "Film"})
	require.NoError(t, err)
	c, err := store.Create(ctx, CreateInput{Title: "Alien 3", Category: "Film"})
	require.NoError(t, err)

	require.NoError(t, store.SavePoster(ctx, a.ID, "", "", "tmdb-348-w500.jpg"))
	require.NoError(t, store.UpdatePosterAttemptFailure(ctx, c.ID, "tmdb", "", "no tmdb match"))

	// c was attempted at "now", so a cutoff before that excludes it.
	got, err := store.ListMissingPosters(ctx, now.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	got, err = store.ListMissingPosters(ctx, now.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
