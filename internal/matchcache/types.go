package matchcache

import (
	"time"

	"github.com/slipstream/posterd/internal/media"
)

// TitleKey is the semantic identity of a release. Nil fields are unknown.
type TitleKey struct {
	MediaType       media.MediaType `json:"mediaType"`
	NormalizedTitle string          `json:"normalizedTitle"`
	Year            *int            `json:"year,omitempty"`
	Season          *int            `json:"season,omitempty"`
	Episode         *int            `json:"episode,omitempty"`
}

// MatchIDs accumulates the external identifiers resolved for one work.
type MatchIDs struct {
	TmdbID   *int64  `json:"tmdbId,omitempty"`
	TvdbID   *int64  `json:"tvdbId,omitempty"`
	TvmazeID *int64  `json:"tvmazeId,omitempty"`
	IgdbID   *int64  `json:"igdbId,omitempty"`
	ImdbID   *string `json:"imdbId,omitempty"`
}

// HasAny reports whether at least one identifier is known.
func (m MatchIDs) HasAny() bool {
	return m.TmdbID != nil || m.TvdbID != nil || m.TvmazeID != nil || m.IgdbID != nil || m.ImdbID != nil
}

// Overlaps reports whether m and o share a provider for which both know
// the same identifier.
func (m MatchIDs) Overlaps(o MatchIDs) bool {
	return sameInt(m.TmdbID, o.TmdbID) ||
		sameInt(m.TvdbID, o.TvdbID) ||
		sameInt(m.TvmazeID, o.TvmazeID) ||
		sameInt(m.IgdbID, o.IgdbID) ||
		(m.ImdbID != nil && o.ImdbID != nil && *m.ImdbID == *o.ImdbID)
}

// Merge returns m with its unknown identifiers filled from o.
func (m MatchIDs) Merge(o MatchIDs) MatchIDs {
	if m.TmdbID == nil {
		m.TmdbID = o.TmdbID
	}
	if m.TvdbID == nil {
		m.TvdbID = o.TvdbID
	}
	if m.TvmazeID == nil {
		m.TvmazeID = o.TvmazeID
	}
	if m.IgdbID == nil {
		m.IgdbID = o.IgdbID
	}
	if m.ImdbID == nil {
		m.ImdbID = o.ImdbID
	}
	return m
}

func sameInt(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

// Entry is one persisted resolution decision.
type Entry struct {
	Fingerprint      string          `json:"fingerprint"`
	MediaType        media.MediaType `json:"mediaType"`
	NormalizedTitle  string          `json:"normalizedTitle"`
	Year             *int            `json:"year,omitempty"`
	Season           *int            `json:"season,omitempty"`
	Episode          *int            `json:"episode,omitempty"`
	IDs              MatchIDs        `json:"ids"`
	Confidence       float64         `json:"confidence"`
	MatchSource      string          `json:"matchSource,omitempty"`
	PosterFile       string          `json:"posterFile,omitempty"`
	PosterProvider   string          `json:"posterProvider,omitempty"`
	PosterProviderID string          `json:"posterProviderId,omitempty"`
	PosterLang       string          `json:"posterLang,omitempty"`
	PosterSize       string          `json:"posterSize,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	LastSeenAt       time.Time       `json:"lastSeenAt"`
	LastAttemptAt    *time.Time      `json:"lastAttemptAt,omitempty"`
	LastError        string          `json:"lastError,omitempty"`
}

// HasMatch reports whether the entry carries provider ids or artwork, as
// opposed to only recording attempts.
func (e *Entry) HasMatch() bool {
	return e.IDs.HasAny() || e.PosterFile != ""
}

// Key returns the title key the entry was stored under.
func (e *Entry) Key() TitleKey {
	return TitleKey{
		MediaType:       e.MediaType,
		NormalizedTitle: e.NormalizedTitle,
		Year:            e.Year,
		Season:          e.Season,
		Episode:         e.Episode,
	}
}
