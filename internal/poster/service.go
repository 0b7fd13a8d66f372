package poster

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/activity"
	"github.com/slipstream/posterd/internal/matchcache"
	"github.com/slipstream/posterd/internal/metrics"
	"github.com/slipstream/posterd/internal/release"
	"github.com/slipstream/posterd/internal/titles"
)

var ErrReleaseNotFound = errors.New("release not found")

const defaultFailureReasonMax = 200

// Config tunes the fetch service.
type Config struct {
	// PreferredLanguage is the poster language asked from catalogs (e.g. "fr-FR").
	PreferredLanguage string

	// FailureReasonMax caps recorded failure reasons, in runes.
	FailureReasonMax int
}

// FetchOptions control a single FetchPoster call.
type FetchOptions struct {
	// LogSingle raises decision logs to info level for one-off fetches.
	LogSingle bool

	// SkipIfExists returns early when the release already has a poster on disk.
	SkipIfExists bool
}

// Service resolves posters for releases.
type Service struct {
	releases  ReleaseStore
	cache     *matchcache.Cache
	artwork   *ArtworkStore
	providers Providers
	activity  ActivityLogger
	router    *Router
	cfg       Config
	logger    zerolog.Logger
}

// NewService creates a new poster service.
func NewService(
	releases ReleaseStore,
	cache *matchcache.Cache,
	artwork *ArtworkStore,
	providers Providers,
	activityLog ActivityLogger,
	cfg Config,
	logger *zerolog.Logger,
) *Service {
	if cfg.FailureReasonMax <= 0 {
		cfg.FailureReasonMax = defaultFailureReasonMax
	}
	return &Service{
		releases:  releases,
		cache:     cache,
		artwork:   artwork,
		providers: providers,
		activity:  activityLog,
		router:    NewRouter(),
		cfg:       cfg,
		logger:    logger.With().Str("component", "poster").Logger(),
	}
}

// Router returns the category router so callers can register strategies.
func (s *Service) Router() *Router {
	return s.router
}

// Artwork returns the poster file store.
func (s *Service) Artwork() *ArtworkStore {
	return s.artwork
}

// Cache returns the match cache.
func (s *Service) Cache() *matchcache.Cache {
	return s.cache
}

// FetchPoster resolves and stores a poster for a release. Outcomes are
// reported in the result; the error is reserved for storage failures and
// cancellation of ctx.
func (s *Service) FetchPoster(ctx context.Context, releaseID int64, opts FetchOptions) (FetchResult, error) {
	rec, err := s.releases.GetForPoster(ctx, releaseID)
	if err != nil {
		return FetchResult{}, fmt.Errorf("failed to load release %d: %w", releaseID, err)
	}
	if rec == nil {
		return notFound(releaseID, "", ErrReleaseNotFound.Error()), nil
	}

	if opts.SkipIfExists && s.artwork.Exists(rec.PosterFile) {
		return s.keepExisting(ctx, rec)
	}

	rc := newRoutingContext(rec, opts.LogSingle)
	if rc.Title == "" || rc.NormalizedTitle == "" {
		res := failure(releaseID, http.StatusBadRequest, "", "", "missing title")
		metrics.ObserveFetch("none", res.StatusCode)
		return res, nil
	}

	if res, ok, err := s.reuseFromCache(ctx, rc); err != nil || ok {
		return res, err
	}
	if res, ok, err := s.reuseSameTitle(ctx, rc); err != nil || ok {
		return res, err
	}

	if err := s.cache.RecordAttempt(ctx, rc.Key); err != nil {
		s.logger.Warn().Err(err).Int64("releaseId", releaseID).Msg("Failed to record cache attempt")
	}

	branch, strategy := s.router.Route(rc.Category)
	s.event(rc).
		Int64("releaseId", releaseID).
		Str("title", rc.Title).
		Int("year", rc.Year).
		Str("category", string(rc.Category)).
		Str("mediaType", string(rc.MediaType)).
		Str("strategy", branch).
		Bool("ambiguous", rc.Analysis.IsAmbiguous).
		Msg("Dispatching poster fetch")

	res, err := strategy.Fetch(ctx, s, rc)
	if err != nil {
		if ctx.Err() != nil {
			return FetchResult{}, ctx.Err()
		}
		res = failure(releaseID, 0, "", "", err.Error())
	}

	if !res.OK {
		res = s.recordFailure(ctx, rc, res)
	}
	metrics.ObserveFetch(branch, res.StatusCode)
	return res, nil
}

// ClearAll forgets every stored poster reference. Files and cache entries
// are kept.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.releases.ClearAllPosterReferences(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear poster references: %w", err)
	}
	s.logger.Info().Int64("releases", n).Msg("Cleared poster references")
	s.activity.Add(ctx, 0, activity.LevelInfo, activity.EventTypePostersCleared,
		fmt.Sprintf("Cleared posters of %d releases", n), map[string]any{"releases": n})
	return n, nil
}

func (s *Service) keepExisting(ctx context.Context, rec *release.Record) (FetchResult, error) {
	hash, err := s.artwork.Hash(rec.PosterFile)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", rec.PosterFile).Msg("Failed to hash existing poster")
	}
	if err := s.releases.UpdatePosterAttemptSuccess(ctx, rec.ID, release.Attempt{
		Provider:   rec.PosterProvider,
		ProviderID: rec.PosterProviderID,
		Lang:       rec.PosterLang,
		Size:       rec.PosterSize,
		Hash:       hash,
	}); err != nil {
		return FetchResult{}, fmt.Errorf("failed to update poster audit: %w", err)
	}
	metrics.ObserveFetch("existing", http.StatusOK)
	return success(rec.ID, Body{
		Cached:     true,
		Provider:   rec.PosterProvider,
		ProviderID: rec.PosterProviderID,
		File:       rec.PosterFile,
		Lang:       rec.PosterLang,
		Size:       rec.PosterSize,
	}), nil
}

// reuseFromCache serves a poster from a previous decision for the same
// identity. It reports false when the fetch must continue.
func (s *Service) reuseFromCache(ctx context.Context, rc *RoutingContext) (FetchResult, bool, error) {
	entry, err := s.cache.TryGet(ctx, rc.Fingerprint)
	if err != nil {
		return FetchResult{}, false, err
	}
	if entry != nil && !entry.HasMatch() {
		entry = nil
	}
	kind := "fingerprint"
	if entry == nil && rc.Year == 0 {
		entry, err = s.cache.TryGetByTitleKey(ctx, rc.MediaType, rc.NormalizedTitle, nil)
		if err != nil {
			return FetchResult{}, false, err
		}
		if entry != nil && !s.titleKeyUsable(rc, entry) {
			s.event(rc).Int64("releaseId", rc.ReleaseID).Float64("confidence", entry.Confidence).Msg("Ignoring weak title cache entry")
			entry = nil
		}
		kind = "title"
	}
	if entry == nil {
		return FetchResult{}, false, nil
	}

	if s.artwork.Exists(entry.PosterFile) {
		res, err := s.persistCached(ctx, rc, entry, kind)
		return res, err == nil, err
	}

	if entry.IDs.TvmazeID != nil && s.providers.TVMaze != nil {
		return s.refetchTVMaze(ctx, rc, entry)
	}
	return FetchResult{}, false, nil
}

func (s *Service) titleKeyUsable(rc *RoutingContext, entry *matchcache.Entry) bool {
	if !entry.IDs.HasAny() || entry.Confidence < ReuseMinConfidence {
		return false
	}
	if rc.Analysis.IsAmbiguous && !entry.IDs.Overlaps(rc.IDs) {
		return false
	}
	return true
}

func (s *Service) persistCached(ctx context.Context, rc *RoutingContext, entry *matchcache.Entry, kind string) (FetchResult, error) {
	hash, err := s.artwork.Hash(entry.PosterFile)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", entry.PosterFile).Msg("Failed to hash cached poster")
	}
	if err := s.releases.SavePoster(ctx, rc.ReleaseID, entry.PosterProviderID, "", entry.PosterFile); err != nil {
		return FetchResult{}, fmt.Errorf("failed to save poster: %w", err)
	}
	s.saveIDs(ctx, rc, entry.IDs)
	if err := s.releases.UpdatePosterAttemptSuccess(ctx, rc.ReleaseID, release.Attempt{
		Provider:   entry.PosterProvider,
		ProviderID: entry.PosterProviderID,
		Lang:       entry.PosterLang,
		Size:       entry.PosterSize,
		Hash:       hash,
	}); err != nil {
		return FetchResult{}, fmt.Errorf("failed to update poster audit: %w", err)
	}
	if err := s.cache.TouchSeen(ctx, entry.Fingerprint); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to touch cache entry")
	}
	if entry.Fingerprint != rc.Fingerprint {
		// Remember the association under this release's own identity too.
		alias := rc.entry()
		alias.IDs = entry.IDs
		alias.Confidence = entry.Confidence
		alias.MatchSource = entry.MatchSource
		alias.PosterFile = entry.PosterFile
		alias.PosterProvider = entry.PosterProvider
		alias.PosterProviderID = entry.PosterProviderID
		alias.PosterLang = entry.PosterLang
		alias.PosterSize = entry.PosterSize
		s.upsertCache(ctx, alias)
	}

	metrics.ObserveCacheHit(kind)
	metrics.ObserveFetch("cache", http.StatusOK)
	s.event(rc).
		Int64("releaseId", rc.ReleaseID).
		Str("file", entry.PosterFile).
		Str("lookup", kind).
		Msg("Poster reused from match cache")
	s.activity.Add(ctx, rc.ReleaseID, activity.LevelInfo, activity.EventTypePosterReused,
		fmt.Sprintf("Poster for %q reused from cache", rc.Title),
		map[string]any{"file": entry.PosterFile, "lookup": kind, "fingerprint": entry.Fingerprint})

	return success(rc.ReleaseID, Body{
		Cached:      true,
		Provider:    entry.PosterProvider,
		ProviderID:  entry.PosterProviderID,
		File:        entry.PosterFile,
		Lang:        entry.PosterLang,
		Size:        entry.PosterSize,
		Confidence:  entry.Confidence,
		MatchSource: entry.MatchSource,
	}), nil
}

// refetchTVMaze downloads the image of a cached TVmaze show whose file is
// gone. Any miss falls through to the normal pipeline.
func (s *Service) refetchTVMaze(ctx context.Context, rc *RoutingContext, entry *matchcache.Entry) (FetchResult, bool, error) {
	showID := int(*entry.IDs.TvmazeID)
	show, err := s.providers.TVMaze.GetShow(ctx, showID)
	if err != nil {
		if ctx.Err() != nil {
			return FetchResult{}, false, ctx.Err()
		}
		s.logger.Warn().Err(err).Int("showId", showID).Msg("TVmaze refetch failed")
		return FetchResult{}, false, nil
	}
	if show == nil || show.ImageURL == "" {
		return FetchResult{}, false, nil
	}

	providerID := strconv.Itoa(show.ID)
	img, err := s.artwork.Fetch(ctx, show.ImageURL, "tvmaze", providerID, "")
	if err != nil {
		if ctx.Err() != nil {
			return FetchResult{}, false, ctx.Err()
		}
		s.logger.Warn().Err(err).Int("showId", showID).Msg("TVmaze image refetch failed")
		return FetchResult{}, false, nil
	}

	ids := entry.IDs
	if show.TvdbID > 0 && ids.TvdbID == nil {
		ids.TvdbID = int64Ptr(int64(show.TvdbID))
	}
	matchSource := entry.MatchSource
	if matchSource == "" {
		matchSource = "tvmaze"
	}
	res, err := s.persistWin(ctx, rc, win{
		provider:    "tvmaze",
		providerID:  providerID,
		sourcePath:  show.ImageURL,
		image:       img,
		confidence:  entry.Confidence,
		matchSource: matchSource,
		ids:         ids,
	})
	if err != nil {
		return FetchResult{}, false, err
	}
	metrics.ObserveCacheHit("tvmaze")
	res.Body.Cached = true
	return res, true, nil
}

// reuseSameTitle copies the poster of another release with the same title.
func (s *Service) reuseSameTitle(ctx context.Context, rc *RoutingContext) (FetchResult, bool, error) {
	a := rc.Analysis
	if a.LikelyChannelOrProgram {
		return FetchResult{}, false, nil
	}
	if rc.Year <= 0 && len(a.SignificantTokens) < 2 && a.IsAmbiguous {
		return FetchResult{}, false, nil
	}

	lookup := release.TitleLookup{
		ExcludeID:       rc.ReleaseID,
		RawTitle:        rc.RawTitle,
		NormalizedTitle: rc.NormalizedTitle,
		MediaType:       rc.MediaType,
		Year:            rc.Year,
	}
	donor, err := s.releases.GetPosterForTitleClean(ctx, lookup, func(r *release.Record) bool {
		if !s.artwork.Exists(r.PosterFile) {
			return false
		}
		return !a.IsAmbiguous || idsOf(r).Overlaps(rc.IDs)
	})
	if err != nil {
		return FetchResult{}, false, err
	}
	if donor == nil {
		return FetchResult{}, false, nil
	}

	if err := s.releases.SavePoster(ctx, rc.ReleaseID, donor.PosterProviderID, donor.PosterSourcePath, donor.PosterFile); err != nil {
		return FetchResult{}, false, fmt.Errorf("failed to save poster: %w", err)
	}
	donorIDs := idsOf(donor)
	s.saveIDs(ctx, rc, donorIDs)
	if err := s.releases.UpdatePosterAttemptSuccess(ctx, rc.ReleaseID, release.Attempt{
		Provider:   donor.PosterProvider,
		ProviderID: donor.PosterProviderID,
		Lang:       donor.PosterLang,
		Size:       donor.PosterSize,
		Hash:       donor.PosterHash,
	}); err != nil {
		return FetchResult{}, false, fmt.Errorf("failed to update poster audit: %w", err)
	}

	entry := rc.entry()
	entry.IDs = donorIDs.Merge(rc.IDs)
	entry.MatchSource = "reuse"
	entry.PosterFile = donor.PosterFile
	entry.PosterProvider = donor.PosterProvider
	entry.PosterProviderID = donor.PosterProviderID
	entry.PosterLang = donor.PosterLang
	entry.PosterSize = donor.PosterSize
	s.upsertCache(ctx, entry)

	metrics.ObserveCacheHit("same_title")
	metrics.ObserveFetch("reuse", http.StatusOK)
	s.event(rc).
		Int64("releaseId", rc.ReleaseID).
		Int64("donorId", donor.ID).
		Str("file", donor.PosterFile).
		Msg("Poster reused from release with same title")
	s.activity.Add(ctx, rc.ReleaseID, activity.LevelInfo, activity.EventTypePosterReused,
		fmt.Sprintf("Poster for %q reused from release %d", rc.Title, donor.ID),
		map[string]any{"file": donor.PosterFile, "donorId": donor.ID})

	return success(rc.ReleaseID, Body{
		Reused:     true,
		Provider:   donor.PosterProvider,
		ProviderID: donor.PosterProviderID,
		File:       donor.PosterFile,
		Lang:       donor.PosterLang,
		Size:       donor.PosterSize,
	}), true, nil
}

// win is an accepted match with its image already on disk.
type win struct {
	provider    string
	providerID  string
	sourcePath  string
	image       *StoredImage
	lang        string
	size        string
	confidence  float64
	matchSource string
	ids         matchcache.MatchIDs
}

// persistWin records a downloaded poster on the release, the audit trail
// and the match cache.
func (s *Service) persistWin(ctx context.Context, rc *RoutingContext, w win) (FetchResult, error) {
	if err := s.releases.SavePoster(ctx, rc.ReleaseID, w.providerID, w.sourcePath, w.image.File); err != nil {
		return FetchResult{}, fmt.Errorf("failed to save poster: %w", err)
	}
	s.saveIDs(ctx, rc, w.ids)
	if err := s.releases.UpdatePosterAttemptSuccess(ctx, rc.ReleaseID, release.Attempt{
		Provider:   w.provider,
		ProviderID: w.providerID,
		Lang:       w.lang,
		Size:       w.size,
		Hash:       w.image.Hash,
	}); err != nil {
		return FetchResult{}, fmt.Errorf("failed to update poster audit: %w", err)
	}

	entry := rc.entry()
	entry.IDs = w.ids.Merge(rc.IDs)
	entry.Confidence = w.confidence
	entry.MatchSource = w.matchSource
	entry.PosterFile = w.image.File
	entry.PosterProvider = w.provider
	entry.PosterProviderID = w.providerID
	entry.PosterLang = w.lang
	entry.PosterSize = w.size
	s.upsertCache(ctx, entry)

	s.event(rc).
		Int64("releaseId", rc.ReleaseID).
		Str("provider", w.provider).
		Str("providerId", w.providerID).
		Str("file", w.image.File).
		Float64("confidence", w.confidence).
		Msg("Poster fetched")
	s.activity.Add(ctx, rc.ReleaseID, activity.LevelInfo, activity.EventTypePosterFetched,
		fmt.Sprintf("Poster for %q fetched from %s", rc.Title, w.provider),
		map[string]any{"provider": w.provider, "providerId": w.providerID, "file": w.image.File, "confidence": w.confidence})

	return success(rc.ReleaseID, Body{
		Provider:    w.provider,
		ProviderID:  w.providerID,
		File:        w.image.File,
		Lang:        w.lang,
		Size:        w.size,
		Confidence:  w.confidence,
		MatchSource: w.matchSource,
	}), nil
}

// associate caches an id association that has no poster file yet.
func (s *Service) associate(ctx context.Context, rc *RoutingContext, ids matchcache.MatchIDs, confidence float64, matchSource string) {
	s.saveIDs(ctx, rc, ids)
	entry := rc.entry()
	entry.IDs = ids.Merge(rc.IDs)
	entry.Confidence = confidence
	entry.MatchSource = matchSource
	s.upsertCache(ctx, entry)
}

func (s *Service) upsertCache(ctx context.Context, entry matchcache.Entry) {
	if err := s.cache.Upsert(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("fingerprint", entry.Fingerprint).Msg("Failed to update match cache")
	}
}

// saveIDs stores newly learned external ids on the release.
func (s *Service) saveIDs(ctx context.Context, rc *RoutingContext, ids matchcache.MatchIDs) {
	save := func(known, found *int64, fn func(context.Context, int64, int64) error, name string) {
		if found == nil || *found <= 0 || (known != nil && *known == *found) {
			return
		}
		if err := fn(ctx, rc.ReleaseID, *found); err != nil {
			s.logger.Warn().Err(err).Int64("releaseId", rc.ReleaseID).Str("id", name).Msg("Failed to save external id")
		}
	}
	save(rc.IDs.TmdbID, ids.TmdbID, s.releases.SaveTmdbID, "tmdb")
	save(rc.IDs.TvdbID, ids.TvdbID, s.releases.SaveTvdbID, "tvdb")
	save(rc.IDs.TvmazeID, ids.TvmazeID, s.releases.SaveTvmazeID, "tvmaze")
	save(rc.IDs.IgdbID, ids.IgdbID, s.releases.SaveIgdbID, "igdb")
}

// updateDetails stores extended metadata; failures are only logged.
func (s *Service) updateDetails(ctx context.Context, rc *RoutingContext, d release.Details) {
	if err := s.releases.UpdateExternalDetails(ctx, rc.ReleaseID, d); err != nil {
		s.logger.Warn().Err(err).Int64("releaseId", rc.ReleaseID).Str("provider", d.Provider).Msg("Failed to update external details")
	}
}

func (s *Service) recordFailure(ctx context.Context, rc *RoutingContext, res FetchResult) FetchResult {
	reason := strings.TrimSpace(res.Body.Error)
	if reason == "" {
		reason = "unknown"
	}
	reason = Truncate(reason, s.cfg.FailureReasonMax)
	res.Body.Error = reason

	if err := s.releases.UpdatePosterAttemptFailure(ctx, rc.ReleaseID, res.Body.Provider, res.Body.ProviderID, reason); err != nil {
		s.logger.Warn().Err(err).Int64("releaseId", rc.ReleaseID).Msg("Failed to record poster failure")
	}
	if err := s.cache.RecordError(ctx, rc.Key, reason); err != nil {
		s.logger.Warn().Err(err).Int64("releaseId", rc.ReleaseID).Msg("Failed to record cache error")
	}

	s.event(rc).
		Int64("releaseId", rc.ReleaseID).
		Str("title", rc.Title).
		Int("status", res.StatusCode).
		Str("provider", res.Body.Provider).
		Str("reason", reason).
		Msg("Poster fetch failed")
	s.activity.Add(ctx, rc.ReleaseID, activity.LevelWarning, activity.EventTypePosterFailed,
		fmt.Sprintf("No poster for %q: %s", rc.Title, reason),
		map[string]any{"status": res.StatusCode, "provider": res.Body.Provider, "reason": reason})
	return res
}

// event logs at info level for single fetches and debug otherwise.
func (s *Service) event(rc *RoutingContext) *zerolog.Event {
	if rc.LogSingle {
		return s.logger.Info()
	}
	return s.logger.Debug()
}

// observe counts a provider call outcome.
func observe(provider string, err error, found bool) {
	switch {
	case err != nil:
		metrics.ObserveProvider(provider, "error")
	case found:
		metrics.ObserveProvider(provider, "match")
	default:
		metrics.ObserveProvider(provider, "miss")
	}
}

// queryTitle is the title sent to providers.
func queryTitle(rc *RoutingContext) string {
	if t := titles.Display(rc.Title); t != "" {
		return t
	}
	return rc.Title
}
