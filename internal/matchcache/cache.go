// Package matchcache stores poster resolution decisions keyed by a title
// fingerprint so that releases sharing an identity skip the network.
package matchcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/database/sqlc"
	"github.com/slipstream/posterd/internal/media"
)

// BuildFingerprint hashes mediaType|title|year|season|episode, writing
// "null" for unknown parts, into a lower-case hex SHA-256 digest.
func BuildFingerprint(key TitleKey) string {
	parts := []string{
		string(key.MediaType),
		key.NormalizedTitle,
		optInt(key.Year),
		optInt(key.Season),
		optInt(key.Episode),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func optInt(v *int) string {
	if v == nil {
		return "null"
	}
	return strconv.Itoa(*v)
}

// Cache is the SQLite-backed match cache.
type Cache struct {
	queries *sqlc.Queries
	logger  zerolog.Logger
	clock   clockwork.Clock
}

// New creates a match cache. A nil clock uses the wall clock.
func New(db *sql.DB, logger *zerolog.Logger, clock clockwork.Clock) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		queries: sqlc.New(db),
		logger:  logger.With().Str("component", "matchcache").Logger(),
		clock:   clock,
	}
}

// TryGet returns the entry for fingerprint, or nil.
func (c *Cache) TryGet(ctx context.Context, fingerprint string) (*Entry, error) {
	row, err := c.queries.GetMatchCacheEntry(ctx, fingerprint)
	return c.toEntry(row, err)
}

// TryGetByTitleKey looks an entry up by title. An entry with the same year
// (or the same missing year) wins; otherwise the most confident, most
// recently seen entry across all years is returned. Rows that only record
// attempts are never returned.
func (c *Cache) TryGetByTitleKey(ctx context.Context, mediaType media.MediaType, normalizedTitle string, year *int) (*Entry, error) {
	row, err := c.queries.GetMatchCacheByTitleYear(ctx, sqlc.GetMatchCacheByTitleYearParams{
		MediaType:       string(mediaType),
		NormalizedTitle: normalizedTitle,
		Year:            nullInt(year),
	})
	entry, err := c.toEntry(row, err)
	if err != nil || entry != nil {
		return entry, err
	}
	row, err = c.queries.GetMatchCacheByTitleBest(ctx, sqlc.GetMatchCacheByTitleBestParams{
		MediaType:       string(mediaType),
		NormalizedTitle: normalizedTitle,
	})
	return c.toEntry(row, err)
}

// Upsert merges entry into the cache in a single statement. Unknown fields
// never erase stored ones, and a non-positive confidence keeps the stored
// confidence.
func (c *Cache) Upsert(ctx context.Context, entry Entry) error {
	if entry.Fingerprint == "" {
		entry.Fingerprint = BuildFingerprint(entry.Key())
	}

	var idsJSON sql.NullString
	if entry.IDs.HasAny() {
		b, err := json.Marshal(entry.IDs)
		if err != nil {
			return fmt.Errorf("failed to encode match ids: %w", err)
		}
		idsJSON = sql.NullString{String: string(b), Valid: true}
	}

	confidence := entry.Confidence
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}

	now := c.clock.Now().Unix()
	err := c.queries.UpsertMatchCacheEntry(ctx, sqlc.UpsertMatchCacheEntryParams{
		Fingerprint:      entry.Fingerprint,
		MediaType:        string(entry.MediaType),
		NormalizedTitle:  entry.NormalizedTitle,
		Year:             nullInt(entry.Year),
		Season:           nullInt(entry.Season),
		Episode:          nullInt(entry.Episode),
		IdsJson:          idsJSON,
		Confidence:       confidence,
		MatchSource:      nullString(entry.MatchSource),
		PosterFile:       nullString(entry.PosterFile),
		PosterProvider:   nullString(entry.PosterProvider),
		PosterProviderID: nullString(entry.PosterProviderID),
		PosterLang:       nullString(entry.PosterLang),
		PosterSize:       nullString(entry.PosterSize),
		CreatedTs:        now,
		LastSeenTs:       now,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert match cache entry: %w", err)
	}

	c.logger.Debug().
		Str("fingerprint", entry.Fingerprint).
		Str("source", entry.MatchSource).
		Float64("confidence", confidence).
		Msg("match cache upserted")
	return nil
}

// TouchSeen advances last_seen to now.
func (c *Cache) TouchSeen(ctx context.Context, fingerprint string) error {
	return c.queries.TouchMatchCacheSeen(ctx, sqlc.TouchMatchCacheSeenParams{
		LastSeenTs:  c.clock.Now().Unix(),
		Fingerprint: fingerprint,
	})
}

// RecordAttempt stamps the time of a resolution attempt. A row is created
// for the key when none exists yet; confidence stays at zero until a match
// is upserted.
func (c *Cache) RecordAttempt(ctx context.Context, key TitleKey) error {
	now := c.clock.Now().Unix()
	err := c.queries.RecordMatchCacheAttempt(ctx, sqlc.RecordMatchCacheAttemptParams{
		Fingerprint:     BuildFingerprint(key),
		MediaType:       string(key.MediaType),
		NormalizedTitle: key.NormalizedTitle,
		Year:            nullInt(key.Year),
		Season:          nullInt(key.Season),
		Episode:         nullInt(key.Episode),
		CreatedTs:       now,
		LastSeenTs:      now,
		LastAttemptTs:   sql.NullInt64{Int64: now, Valid: true},
	})
	if err != nil {
		return fmt.Errorf("failed to record match attempt: %w", err)
	}
	return nil
}

// RecordError stores the reason the last attempt for key failed.
func (c *Cache) RecordError(ctx context.Context, key TitleKey, reason string) error {
	now := c.clock.Now().Unix()
	err := c.queries.RecordMatchCacheError(ctx, sqlc.RecordMatchCacheErrorParams{
		Fingerprint:     BuildFingerprint(key),
		MediaType:       string(key.MediaType),
		NormalizedTitle: key.NormalizedTitle,
		Year:            nullInt(key.Year),
		Season:          nullInt(key.Season),
		Episode:         nullInt(key.Episode),
		CreatedTs:       now,
		LastSeenTs:      now,
		LastAttemptTs:   sql.NullInt64{Int64: now, Valid: true},
		LastError:       nullString(reason),
	})
	if err != nil {
		return fmt.Errorf("failed to record match error: %w", err)
	}
	return nil
}

// Count returns the number of cached entries.
func (c *Cache) Count(ctx context.Context) (int64, error) {
	return c.queries.CountMatchCacheEntries(ctx)
}

func (c *Cache) toEntry(row *sqlc.PosterMatchCache, err error) (*Entry, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read match cache: %w", err)
	}

	entry := &Entry{
		Fingerprint:      row.Fingerprint,
		MediaType:        media.MediaType(row.MediaType),
		NormalizedTitle:  row.NormalizedTitle,
		Year:             intPtr(row.Year),
		Season:           intPtr(row.Season),
		Episode:          intPtr(row.Episode),
		Confidence:       row.Confidence,
		MatchSource:      row.MatchSource.String,
		PosterFile:       row.PosterFile.String,
		PosterProvider:   row.PosterProvider.String,
		PosterProviderID: row.PosterProviderID.String,
		PosterLang:       row.PosterLang.String,
		PosterSize:       row.PosterSize.String,
		CreatedAt:        time.Unix(row.CreatedTs, 0),
		LastSeenAt:       time.Unix(row.LastSeenTs, 0),
		LastError:        row.LastError.String,
	}
	if row.LastAttemptTs.Valid {
		t := time.Unix(row.LastAttemptTs.Int64, 0)
		entry.LastAttemptAt = &t
	}
	if row.IdsJson.Valid {
		if err := json.Unmarshal([]byte(row.IdsJson.String), &entry.IDs); err != nil {
			c.logger.Warn().Err(err).Str("fingerprint", row.Fingerprint).Msg("ignoring malformed ids_json")
		}
	}
	return entry, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
