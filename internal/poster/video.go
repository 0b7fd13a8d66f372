package poster

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/slipstream/posterd/internal/matchcache"
	"github.com/slipstream/posterd/internal/media"
	"github.com/slipstream/posterd/internal/metadata/fanart"
	"github.com/slipstream/posterd/internal/metadata/omdb"
	"github.com/slipstream/posterd/internal/metadata/tmdb"
	"github.com/slipstream/posterd/internal/metadata/tvmaze"
	"github.com/slipstream/posterd/internal/release"
)

const (
	tmdbPosterSize = "w500"

	// confidenceKnownIDs is used when artwork is found through ids the
	// release already carried.
	confidenceKnownIDs = 0.90
)

func (s *Service) fetchVideo(ctx context.Context, rc *RoutingContext) (FetchResult, error) {
	res, ok, err := s.tryTVMaze(ctx, rc)
	if err != nil || ok {
		return res, err
	}
	return s.fetchCatalog(ctx, rc)
}

// tryTVMaze asks the TV guide first for eligible series. It reports false
// when the catalog should be tried instead.
func (s *Service) tryTVMaze(ctx context.Context, rc *RoutingContext) (FetchResult, bool, error) {
	if s.providers.TVMaze == nil || !TVMazeEligible(rc.Analysis, rc.Category, rc.MediaType, rc.Year) {
		return FetchResult{}, false, nil
	}

	shows, err := s.providers.TVMaze.SearchShows(ctx, queryTitle(rc))
	observe("tvmaze", err, len(shows) > 0)
	if err != nil {
		if ctx.Err() != nil {
			return FetchResult{}, false, ctx.Err()
		}
		s.logger.Warn().Err(err).Str("title", rc.Title).Msg("TVmaze search failed, falling back to catalog")
		return FetchResult{}, false, nil
	}

	best, score := bestShow(rc, shows)
	if best == nil {
		return FetchResult{}, false, nil
	}
	threshold := TVMazeThresholdFor(rc.Analysis, rc.Category)
	if score < threshold {
		s.event(rc).Str("show", best.Title).Float64("score", score).Float64("threshold", threshold).Msg("TVmaze match below threshold")
		return FetchResult{}, false, nil
	}
	if rc.Analysis.IsCommonTitle && (rc.Year <= 0 || best.Year != rc.Year) {
		s.event(rc).Str("show", best.Title).Int("year", best.Year).Msg("TVmaze match rejected for common title without year match")
		return FetchResult{}, false, nil
	}
	if best.ImageURL == "" {
		return FetchResult{}, false, nil
	}

	providerID := strconv.Itoa(best.ID)
	img, err := s.artwork.Fetch(ctx, best.ImageURL, "tvmaze", providerID, "")
	if err != nil {
		if ctx.Err() != nil {
			return FetchResult{}, false, ctx.Err()
		}
		s.logger.Warn().Err(err).Int("showId", best.ID).Msg("TVmaze image download failed, falling back to catalog")
		return FetchResult{}, false, nil
	}

	ids := matchcache.MatchIDs{TvmazeID: int64Ptr(int64(best.ID))}
	if best.TvdbID > 0 {
		ids.TvdbID = int64Ptr(int64(best.TvdbID))
	}
	if best.ImdbID != "" {
		imdb := best.ImdbID
		ids.ImdbID = &imdb
	}

	res, err := s.persistWin(ctx, rc, win{
		provider:    "tvmaze",
		providerID:  providerID,
		sourcePath:  best.ImageURL,
		image:       img,
		confidence:  score,
		matchSource: "tvmaze",
		ids:         ids,
	})
	if err != nil {
		return FetchResult{}, false, err
	}
	s.updateDetails(ctx, rc, release.Details{
		Provider:   "tvmaze",
		ProviderID: providerID,
		Title:      best.Title,
		Overview:   best.Summary,
		Genres:     best.Genres,
		Rating:     best.Rating,
	})
	return res, true, nil
}

func bestShow(rc *RoutingContext, shows []tvmaze.ShowResult) (*tvmaze.ShowResult, float64) {
	var best *tvmaze.ShowResult
	bestScore := -1.0
	for i := range shows {
		score := ScoreTitle(rc.Title, rc.Year, shows[i].Title, "", shows[i].Year)
		if score > bestScore || (score == bestScore && shows[i].Score > best.Score) {
			best, bestScore = &shows[i], score
		}
	}
	return best, bestScore
}

// fetchCatalog searches TMDB for movies and series, with and without the
// year, and picks the best accepted candidate.
func (s *Service) fetchCatalog(ctx context.Context, rc *RoutingContext) (FetchResult, error) {
	if s.providers.TMDB == nil || !s.providers.TMDB.IsConfigured() {
		return s.fetchFanart(ctx, rc, fanartLookup{ids: rc.IDs, confidence: confidenceKnownIDs, matchSource: "release"})
	}

	candidates, err := s.searchCatalog(ctx, rc)
	if err != nil {
		return FetchResult{}, err
	}
	ranked := RankCandidates(queryTitle(rc), rc.Year, candidates)
	withImage := WithImage(ranked)

	if len(withImage) > 0 {
		c := withImage[0]
		if acc := AcceptCandidate(c, rc.Analysis, rc.Year, rc.MediaType); acc != Rejected {
			return s.fetchCatalogPoster(ctx, rc, c, acc)
		}
	}
	if len(ranked) > 0 {
		c := ranked[0]
		if acc := AcceptCandidate(c, rc.Analysis, rc.Year, rc.MediaType); acc != Rejected {
			conf := MatchConfidence(c, acc, rc.Analysis, rc.Category)
			ids := matchcache.MatchIDs{TmdbID: int64Ptr(int64(c.ID))}
			s.event(rc).Int("tmdbId", c.ID).Float64("score", c.Score).Msg("Catalog match has no poster, trying fanart")
			s.associate(ctx, rc, ids, conf, "tmdb")
			return s.fetchFanart(ctx, rc, fanartLookup{kind: c.Kind, ids: ids.Merge(rc.IDs), confidence: conf, matchSource: "tmdb"})
		}
		s.event(rc).Str("best", c.Title).Float64("score", c.Score).Msg("No catalog candidate met the thresholds")
	}

	return s.fetchFanart(ctx, rc, fanartLookup{ids: rc.IDs, confidence: confidenceKnownIDs, matchSource: "release"})
}

// searchCatalog unions the movie and series searches, deduplicated by kind
// and id. It fails only when every search failed.
func (s *Service) searchCatalog(ctx context.Context, rc *RoutingContext) ([]tmdb.NormalizedSearchResult, error) {
	query := queryTitle(rc)
	years := []int{0}
	if rc.Year > 0 {
		years = []int{rc.Year, 0}
	}

	type search func(context.Context, string, int) ([]tmdb.NormalizedSearchResult, error)
	searches := []search{s.providers.TMDB.SearchSeries, s.providers.TMDB.SearchMovies}
	if rc.MediaType == media.MediaTypeMovie {
		searches = []search{s.providers.TMDB.SearchMovies, s.providers.TMDB.SearchSeries}
	}

	type key struct {
		kind tmdb.Kind
		id   int
	}
	seen := make(map[key]struct{})
	var (
		out      []tmdb.NormalizedSearchResult
		firstErr error
		failed   int
	)
	for _, fn := range searches {
		for _, year := range years {
			results, err := fn(ctx, query, year)
			observe("tmdb", err, len(results) > 0)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				failed++
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			for _, r := range results {
				k := key{r.Kind, r.ID}
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				out = append(out, r)
			}
		}
	}
	if failed == len(searches)*len(years) {
		return nil, firstErr
	}
	if firstErr != nil {
		s.logger.Warn().Err(firstErr).Str("title", query).Msg("Some catalog searches failed")
	}
	return out, nil
}

func (s *Service) fetchCatalogPoster(ctx context.Context, rc *RoutingContext, c Candidate, acc Acceptance) (FetchResult, error) {
	providerID := strconv.Itoa(c.ID)
	posterPath, lang := c.PosterPath, ""

	images, err := s.providers.TMDB.GetPosters(ctx, c.Kind, c.ID)
	switch {
	case err != nil && ctx.Err() != nil:
		return FetchResult{}, ctx.Err()
	case err != nil:
		s.logger.Warn().Err(err).Int("tmdbId", c.ID).Msg("Failed to list catalog posters, using search poster")
	default:
		if img, ok := tmdb.PreferredPoster(images, s.cfg.PreferredLanguage); ok && img.FilePath != "" {
			posterPath = img.FilePath
			if img.Iso6391 != nil {
				lang = *img.Iso6391
			}
		}
	}

	url := s.providers.TMDB.GetImageURL(posterPath, tmdbPosterSize)
	img, err := s.artwork.Fetch(ctx, url, "tmdb", providerID, tmdbPosterSize)
	if err != nil {
		if ctx.Err() != nil {
			return FetchResult{}, ctx.Err()
		}
		s.logger.Warn().Err(err).Int("tmdbId", c.ID).Msg("Catalog poster download failed")
		return badGateway(rc.ReleaseID, "tmdb", providerID, "tmdb download failed"), nil
	}

	ids := matchcache.MatchIDs{TmdbID: int64Ptr(int64(c.ID))}
	ids = ids.Merge(s.enrichFromCatalog(ctx, rc, c.Kind, c.ID))

	return s.persistWin(ctx, rc, win{
		provider:    "tmdb",
		providerID:  providerID,
		sourcePath:  posterPath,
		image:       img,
		lang:        lang,
		size:        tmdbPosterSize,
		confidence:  MatchConfidence(c, acc, rc.Analysis, rc.Category),
		matchSource: "tmdb",
		ids:         ids,
	})
}

// enrichFromCatalog stores TMDB details, completed by OMDb when an IMDb
// id is known, and returns the cross-reference ids it learned.
func (s *Service) enrichFromCatalog(ctx context.Context, rc *RoutingContext, kind tmdb.Kind, id int) matchcache.MatchIDs {
	var ids matchcache.MatchIDs
	d, err := s.providers.TMDB.GetDetails(ctx, kind, id)
	if err != nil || d == nil {
		if err != nil && ctx.Err() == nil {
			s.logger.Warn().Err(err).Int("tmdbId", id).Msg("Failed to load catalog details")
		}
		return ids
	}
	if d.TvdbID > 0 {
		ids.TvdbID = int64Ptr(int64(d.TvdbID))
	}
	if d.ImdbID != "" {
		imdb := d.ImdbID
		ids.ImdbID = &imdb
	}

	details := release.Details{
		Provider:       "tmdb",
		ProviderID:     strconv.Itoa(id),
		Title:          d.Title,
		Overview:       d.Overview,
		Tagline:        d.Tagline,
		Genres:         d.Genres,
		ReleaseDate:    d.ReleaseDate,
		RuntimeMinutes: d.Runtime,
		Rating:         d.Rating,
		Votes:          d.Votes,
		Directors:      d.Directors,
		Writers:        d.Writers,
		Cast:           d.Cast,
	}

	if d.ImdbID != "" && s.providers.OMDB != nil && s.providers.OMDB.IsConfigured() {
		t, err := s.providers.OMDB.GetByIMDbID(ctx, d.ImdbID)
		observe("omdb", err, t != nil)
		if err != nil {
			s.logger.Debug().Err(err).Str("imdbId", d.ImdbID).Msg("OMDb lookup failed")
		} else if t != nil {
			fillFromOMDB(&details, t)
		}
	}

	s.updateDetails(ctx, rc, details)
	return ids
}

func fillFromOMDB(d *release.Details, t *omdb.Title) {
	if d.Overview == "" {
		d.Overview = t.Plot
	}
	if len(d.Genres) == 0 {
		d.Genres = t.Genres
	}
	if d.RuntimeMinutes == 0 {
		d.RuntimeMinutes = t.RuntimeMinutes
	}
	if len(d.Directors) == 0 {
		d.Directors = t.Directors
	}
	if len(d.Writers) == 0 {
		d.Writers = t.Writers
	}
	if len(d.Cast) == 0 {
		d.Cast = t.Actors
	}
	if d.Votes == 0 && t.ImdbVotes > 0 {
		d.Rating = t.ImdbRating
		d.Votes = t.ImdbVotes
	}
}

type fanartLookup struct {
	kind        tmdb.Kind
	ids         matchcache.MatchIDs
	confidence  float64
	matchSource string
}

// fetchFanart looks up artwork by catalog id. Series need a TVDB id, which
// is resolved through TMDB and then a TVDB search when missing.
func (s *Service) fetchFanart(ctx context.Context, rc *RoutingContext, in fanartLookup) (FetchResult, error) {
	if in.ids.TmdbID == nil && in.ids.TvdbID == nil {
		return notFound(rc.ReleaseID, "tmdb", "no tmdb match"), nil
	}
	if s.providers.Fanart == nil || !s.providers.Fanart.IsConfigured() {
		return notFound(rc.ReleaseID, "fanart", "no fanart artwork"), nil
	}

	series := in.kind == tmdb.KindTV || (in.kind == "" && rc.MediaType == media.MediaTypeSeries)
	ids := in.ids

	var (
		poster    *fanart.Poster
		err       error
		catalogID string
	)
	if series {
		if ids.TvdbID == nil {
			ids.TvdbID = s.resolveTvdbID(ctx, rc, ids)
			if ctx.Err() != nil {
				return FetchResult{}, ctx.Err()
			}
		}
		if ids.TvdbID == nil {
			return notFound(rc.ReleaseID, "fanart", "missing tvdb id"), nil
		}
		catalogID = strconv.FormatInt(*ids.TvdbID, 10)
		poster, err = s.providers.Fanart.TVPoster(ctx, int(*ids.TvdbID), s.cfg.PreferredLanguage)
	} else {
		if ids.TmdbID == nil {
			return notFound(rc.ReleaseID, "tmdb", "no tmdb match"), nil
		}
		catalogID = strconv.FormatInt(*ids.TmdbID, 10)
		poster, err = s.providers.Fanart.MoviePoster(ctx, int(*ids.TmdbID), s.cfg.PreferredLanguage)
	}
	observe("fanart", err, poster != nil)
	if err != nil {
		return FetchResult{}, err
	}
	if poster == nil {
		return failure(rc.ReleaseID, http.StatusNotFound, "fanart", catalogID, "no fanart artwork"), nil
	}

	img, err := s.artwork.Fetch(ctx, poster.URL, "fanart", poster.ID, "")
	if err != nil {
		if ctx.Err() != nil {
			return FetchResult{}, ctx.Err()
		}
		s.logger.Warn().Err(err).Str("fanartId", poster.ID).Msg("Fanart download failed")
		return badGateway(rc.ReleaseID, "fanart", poster.ID, "fanart download failed"), nil
	}

	return s.persistWin(ctx, rc, win{
		provider:    "fanart",
		providerID:  poster.ID,
		sourcePath:  poster.URL,
		image:       img,
		lang:        poster.Lang,
		confidence:  in.confidence,
		matchSource: in.matchSource,
		ids:         ids,
	})
}

// resolveTvdbID finds the TVDB id of a series, first from the TMDB
// external ids, then by TVDB name search.
func (s *Service) resolveTvdbID(ctx context.Context, rc *RoutingContext, ids matchcache.MatchIDs) *int64 {
	if ids.TmdbID != nil && s.providers.TMDB != nil && s.providers.TMDB.IsConfigured() {
		ext, err := s.providers.TMDB.GetExternalIDs(ctx, tmdb.KindTV, int(*ids.TmdbID))
		switch {
		case err != nil:
			s.logger.Debug().Err(err).Int64("tmdbId", *ids.TmdbID).Msg("Failed to load external ids")
		case ext != nil && ext.TvdbID > 0:
			return int64Ptr(int64(ext.TvdbID))
		}
	}

	if s.providers.TVDB == nil || !s.providers.TVDB.IsConfigured() {
		return nil
	}
	results, err := s.providers.TVDB.SearchSeries(ctx, queryTitle(rc), rc.Year)
	observe("tvdb", err, len(results) > 0)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Debug().Err(err).Str("title", rc.Title).Msg("TVDB search failed")
		}
		return nil
	}

	threshold := StrongThresholdFor(rc.Analysis)
	var best *int64
	bestScore := 0.0
	for _, r := range results {
		score := ScoreTitle(rc.Title, rc.Year, r.Title, "", r.Year)
		for _, alias := range r.Aliases {
			if alt := ScoreTitle(rc.Title, rc.Year, alias, "", r.Year); alt > score {
				score = alt
			}
		}
		if score >= threshold && score > bestScore && r.TvdbID > 0 {
			best, bestScore = int64Ptr(int64(r.TvdbID)), score
		}
	}
	return best
}
