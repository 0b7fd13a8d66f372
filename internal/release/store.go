// Package release persists releases and the poster audit trail attached to them.
package release

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/database/sqlc"
	"github.com/slipstream/posterd/internal/media"
	"github.com/slipstream/posterd/internal/titles"
)

var (
	ErrNotFound     = errors.New("release not found")
	ErrInvalidTitle = errors.New("release title is required")
)

// Store provides release persistence.
type Store struct {
	db      *sql.DB
	queries *sqlc.Queries
	logger  zerolog.Logger
	now     func() time.Time
}

// NewStore creates a new release store.
func NewStore(db *sql.DB, logger *zerolog.Logger) *Store {
	return &Store{
		db:      db,
		queries: sqlc.New(db),
		logger:  logger.With().Str("component", "release").Logger(),
		now:     time.Now,
	}
}

// Create inserts a release, deriving the cleaned title, year, season and
// episode from the raw title when they are not supplied.
func (s *Store) Create(ctx context.Context, input CreateInput) (*Record, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	category := media.ParseCategory(input.Category)

	var parsed titles.Parsed
	switch category {
	case media.CategoryGame, media.CategoryMusic, media.CategoryBook, media.CategoryComic:
		parsed = titles.ParsePlain(title)
	default:
		parsed = titles.ParseRelease(title)
	}
	if input.TitleClean != "" {
		parsed.Title = titles.TrimTrailingPunctuation(strings.TrimSpace(input.TitleClean))
	}
	if input.Year != nil {
		parsed.Year = *input.Year
	}
	if input.Season != nil {
		parsed.Season = *input.Season
	}
	if input.Episode != nil {
		parsed.Episode = *input.Episode
	}

	id, err := s.queries.CreateRelease(ctx, sqlc.CreateReleaseParams{
		Title:           title,
		TitleClean:      parsed.Title,
		TitleNormalized: titles.Normalize(parsed.Title),
		Category:        string(category),
		MediaType:       string(media.MediaTypeFor(category, parsed.Season)),
		Year:            nullInt(parsed.Year),
		Season:          nullInt(parsed.Season),
		Episode:         nullInt(parsed.Episode),
		TmdbID:          nullInt64(input.TmdbID),
		TvdbID:          nullInt64(input.TvdbID),
		TvmazeID:        nullInt64(input.TvmazeID),
		IgdbID:          nullInt64(input.IgdbID),
		ImdbID:          nullString(input.ImdbID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create release: %w", err)
	}

	s.logger.Debug().Int64("releaseId", id).Str("title", parsed.Title).Str("category", string(category)).Msg("release created")
	return s.Get(ctx, id)
}

// Get returns a release or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row, err := s.queries.GetRelease(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get release: %w", err)
	}
	return rowToRecord(row), nil
}

// GetForPoster returns the release or nil when it does not exist.
func (s *Store) GetForPoster(ctx context.Context, id int64) (*Record, error) {
	rec, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

// SavePoster records the local poster file of a release.
func (s *Store) SavePoster(ctx context.Context, id int64, externalID, sourcePath, localFile string) error {
	return s.queries.SavePoster(ctx, sqlc.SavePosterParams{
		PosterFile:       nullString(localFile),
		PosterExternalID: nullString(externalID),
		PosterSourcePath: nullString(sourcePath),
		ID:               id,
	})
}

// SaveTvdbID stores the TVDB id resolved for a release.
func (s *Store) SaveTvdbID(ctx context.Context, id, tvdbID int64) error {
	return s.queries.SaveTvdbID(ctx, sqlc.SaveTvdbIDParams{TvdbID: nullInt64(tvdbID), ID: id})
}

// SaveTmdbID stores the TMDB id resolved for a release.
func (s *Store) SaveTmdbID(ctx context.Context, id, tmdbID int64) error {
	return s.queries.SaveTmdbID(ctx, sqlc.SaveTmdbIDParams{TmdbID: nullInt64(tmdbID), ID: id})
}

// SaveTvmazeID stores the TVmaze id resolved for a release.
func (s *Store) SaveTvmazeID(ctx context.Context, id, tvmazeID int64) error {
	return s.queries.SaveTvmazeID(ctx, sqlc.SaveTvmazeIDParams{TvmazeID: nullInt64(tvmazeID), ID: id})
}

// SaveIgdbID stores the IGDB id resolved for a release.
func (s *Store) SaveIgdbID(ctx context.Context, id, igdbID int64) error {
	return s.queries.SaveIgdbID(ctx, sqlc.SaveIgdbIDParams{IgdbID: nullInt64(igdbID), ID: id})
}

// UpdateExternalDetails copies provider metadata onto a release. Empty
// fields leave the stored values untouched.
func (s *Store) UpdateExternalDetails(ctx context.Context, id int64, d Details) error {
	return s.queries.UpdateExternalDetails(ctx, sqlc.UpdateExternalDetailsParams{
		ExtProvider:    nullString(d.Provider),
		ExtProviderID:  nullString(d.ProviderID),
		ExtTitle:       nullString(d.Title),
		Overview:       nullString(d.Overview),
		Tagline:        nullString(d.Tagline),
		Genres:         nullString(joinList(d.Genres)),
		ReleaseDate:    nullString(d.ReleaseDate),
		RuntimeMinutes: nullInt(d.RuntimeMinutes),
		Rating:         sql.NullFloat64{Float64: d.Rating, Valid: d.Rating > 0},
		Votes:          nullInt(d.Votes),
		Directors:      nullString(joinList(d.Directors)),
		Writers:        nullString(joinList(d.Writers)),
		CastMembers:    nullString(joinList(d.Cast)),
		ID:             id,
	})
}

// UpdatePosterAttemptSuccess writes the audit trail of a successful attempt
// and clears any previous error.
func (s *Store) UpdatePosterAttemptSuccess(ctx context.Context, id int64, a Attempt) error {
	return s.queries.UpdatePosterAttemptSuccess(ctx, sqlc.UpdatePosterAttemptSuccessParams{
		PosterProvider:   nullString(a.Provider),
		PosterProviderID: nullString(a.ProviderID),
		PosterLang:       nullString(a.Lang),
		PosterSize:       nullString(a.Size),
		PosterHash:       nullString(a.Hash),
		PosterAttemptTs:  sql.NullInt64{Int64: s.now().Unix(), Valid: true},
		ID:               id,
	})
}

// UpdatePosterAttemptFailure writes the audit trail of a failed attempt.
func (s *Store) UpdatePosterAttemptFailure(ctx context.Context, id int64, provider, providerID, reason string) error {
	if reason == "" {
		reason = "unknown"
	}
	return s.queries.UpdatePosterAttemptFailure(ctx, sqlc.UpdatePosterAttemptFailureParams{
		PosterProvider:   nullString(provider),
		PosterProviderID: nullString(providerID),
		PosterLastError:  nullString(reason),
		PosterAttemptTs:  sql.NullInt64{Int64: s.now().Unix(), Valid: true},
		ID:               id,
	})
}

// titleCandidatePage is how many same-title candidates are read per query.
const titleCandidatePage = 20

// GetPosterForTitleClean returns the most recent other release sharing the
// title that has a poster and is accepted by keep, or nil. Candidates are
// read page by page until one is kept.
func (s *Store) GetPosterForTitleClean(ctx context.Context, lookup TitleLookup, keep func(*Record) bool) (*Record, error) {
	params := sqlc.ListPosterCandidatesByTitleParams{
		ID:              lookup.ExcludeID,
		TitleClean:      strings.TrimSpace(lookup.RawTitle),
		TitleNormalized: lookup.NormalizedTitle,
		MediaType:       nullString(string(lookup.MediaType)),
		Year:            nullInt(lookup.Year),
		PageSize:        titleCandidatePage,
	}
	for {
		rows, err := s.queries.ListPosterCandidatesByTitle(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list poster candidates: %w", err)
		}
		for _, row := range rows {
			rec := rowToRecord(row)
			if keep == nil || keep(rec) {
				return rec, nil
			}
		}
		if len(rows) < titleCandidatePage {
			return nil, nil
		}
		params.PageOffset += titleCandidatePage
	}
}

// ListMissingPosters returns releases without a poster whose last attempt
// (if any) happened before attemptedBefore.
func (s *Store) ListMissingPosters(ctx context.Context, attemptedBefore time.Time, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.queries.ListReleasesMissingPoster(ctx, sqlc.ListReleasesMissingPosterParams{
		AttemptedBefore: attemptedBefore.Unix(),
		Limit:           int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list releases missing posters: %w", err)
	}
	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToRecord(row))
	}
	return records, nil
}

// ClearAllPosterReferences forgets every poster file and audit trail.
func (s *Store) ClearAllPosterReferences(ctx context.Context) (int64, error) {
	n, err := s.queries.ClearAllPosterReferences(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear poster references: %w", err)
	}
	s.logger.Info().Int64("releases", n).Msg("cleared poster references")
	return n, nil
}

func rowToRecord(row *sqlc.Release) *Record {
	rec := &Record{
		ID:               row.ID,
		Title:            row.Title,
		TitleClean:       row.TitleClean,
		TitleNormalized:  row.TitleNormalized,
		Category:         media.Category(row.Category),
		MediaType:        media.MediaType(row.MediaType),
		Year:             int(row.Year.Int64),
		Season:           int(row.Season.Int64),
		Episode:          int(row.Episode.Int64),
		TmdbID:           row.TmdbID.Int64,
		TvdbID:           row.TvdbID.Int64,
		TvmazeID:         row.TvmazeID.Int64,
		IgdbID:           row.IgdbID.Int64,
		ImdbID:           row.ImdbID.String,
		PosterFile:       row.PosterFile.String,
		PosterSourcePath: row.PosterSourcePath.String,
		PosterProvider:   row.PosterProvider.String,
		PosterProviderID: row.PosterProviderID.String,
		PosterLang:       row.PosterLang.String,
		PosterSize:       row.PosterSize.String,
		PosterHash:       row.PosterHash.String,
		PosterLastError:  row.PosterLastError.String,
	}
	if row.PosterAttemptTs.Valid {
		rec.PosterAttemptAt = time.Unix(row.PosterAttemptTs.Int64, 0)
	}
	if row.CreatedAt.Valid {
		rec.CreatedAt = row.CreatedAt.Time
	}
	if row.ExtProvider.Valid {
		rec.Details = &Details{
			Provider:       row.ExtProvider.String,
			ProviderID:     row.ExtProviderID.String,
			Title:          row.ExtTitle.String,
			Overview:       row.Overview.String,
			Tagline:        row.Tagline.String,
			Genres:         splitList(row.Genres.String),
			ReleaseDate:    row.ReleaseDate.String,
			RuntimeMinutes: int(row.RuntimeMinutes.Int64),
			Rating:         row.Rating.Float64,
			Votes:          int(row.Votes.Int64),
			Directors:      splitList(row.Directors.String),
			Writers:        splitList(row.Writers.String),
			Cast:           splitList(row.CastMembers.String),
		}
	}
	return rec
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n > 0}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n > 0}
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseID parses a release id path parameter.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid release id %q", s)
	}
	return id, nil
}
