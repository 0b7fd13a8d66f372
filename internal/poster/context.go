package poster

import (
	"strings"

	"github.com/slipstream/posterd/internal/matchcache"
	"github.com/slipstream/posterd/internal/media"
	"github.com/slipstream/posterd/internal/release"
	"github.com/slipstream/posterd/internal/titles"
)

// RoutingContext is everything a branch needs about one fetch. It is built
// once per call and not modified afterwards.
type RoutingContext struct {
	ReleaseID       int64
	ReleaseName     string
	RawTitle        string
	Title           string
	NormalizedTitle string
	Year            int
	Season          int
	Episode         int
	Category        media.Category
	MediaType       media.MediaType
	IDs             matchcache.MatchIDs
	Analysis        titles.Analysis
	Key             matchcache.TitleKey
	Fingerprint     string
	LogSingle       bool
}

func newRoutingContext(rec *release.Record, logSingle bool) *RoutingContext {
	title := titles.TrimTrailingPunctuation(titles.StripDiacritics(strings.TrimSpace(rec.TitleClean)))

	category := rec.Category
	if category == "" {
		category = media.CategoryOther
	}
	mediaType := rec.MediaType
	if mediaType == "" {
		mediaType = media.MediaTypeFor(category, rec.Season)
	}

	rc := &RoutingContext{
		ReleaseID:       rec.ID,
		ReleaseName:     rec.Title,
		RawTitle:        rec.TitleClean,
		Title:           title,
		NormalizedTitle: titles.Normalize(title),
		Year:            rec.Year,
		Season:          rec.Season,
		Episode:         rec.Episode,
		Category:        category,
		MediaType:       mediaType,
		IDs:             idsOf(rec),
		Analysis:        titles.Analyze(title, category),
		LogSingle:       logSingle,
	}
	rc.Key = matchcache.TitleKey{
		MediaType:       mediaType,
		NormalizedTitle: rc.NormalizedTitle,
		Year:            optional(rec.Year),
		Season:          optional(rec.Season),
		Episode:         optional(rec.Episode),
	}
	rc.Fingerprint = matchcache.BuildFingerprint(rc.Key)
	return rc
}

// entry starts a cache entry for this context's identity.
func (rc *RoutingContext) entry() matchcache.Entry {
	return matchcache.Entry{
		Fingerprint:     rc.Fingerprint,
		MediaType:       rc.Key.MediaType,
		NormalizedTitle: rc.Key.NormalizedTitle,
		Year:            rc.Key.Year,
		Season:          rc.Key.Season,
		Episode:         rc.Key.Episode,
	}
}

func idsOf(rec *release.Record) matchcache.MatchIDs {
	var ids matchcache.MatchIDs
	if rec.TmdbID > 0 {
		ids.TmdbID = int64Ptr(rec.TmdbID)
	}
	if rec.TvdbID > 0 {
		ids.TvdbID = int64Ptr(rec.TvdbID)
	}
	if rec.TvmazeID > 0 {
		ids.TvmazeID = int64Ptr(rec.TvmazeID)
	}
	if rec.IgdbID > 0 {
		ids.IgdbID = int64Ptr(rec.IgdbID)
	}
	if rec.ImdbID != "" {
		imdb := rec.ImdbID
		ids.ImdbID = &imdb
	}
	return ids
}

func optional(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

func int64Ptr(n int64) *int64 {
	return &n
}
