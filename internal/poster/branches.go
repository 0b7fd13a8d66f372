package poster

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/slipstream/posterd/internal/matchcache"
	"github.com/slipstream/posterd/internal/release"
)

// match is the single candidate picked by a one-provider branch.
type match struct {
	found      bool
	providerID string
	imageURL   string
	suffix     string
	details    *release.Details
	ids        matchcache.MatchIDs
}

// resolveSingle downloads and records the pick of a one-provider branch.
// label names the provider in failure reasons ("google books").
func (s *Service) resolveSingle(ctx context.Context, rc *RoutingContext, provider, label, missing string, confidence float64, m match) (FetchResult, error) {
	if !m.found {
		return notFound(rc.ReleaseID, provider, "no "+label+" match"), nil
	}
	if m.imageURL == "" {
		if missing == "" {
			missing = "missing " + label + " image"
		}
		return failure(rc.ReleaseID, http.StatusNotFound, provider, m.providerID, missing), nil
	}

	img, err := s.artwork.Fetch(ctx, m.imageURL, provider, m.providerID, m.suffix)
	if err != nil {
		if ctx.Err() != nil {
			return FetchResult{}, ctx.Err()
		}
		s.logger.Warn().Err(err).Str("provider", provider).Str("providerId", m.providerID).Msg("Poster download failed")
		return badGateway(rc.ReleaseID, provider, m.providerID, label+" download failed"), nil
	}

	res, err := s.persistWin(ctx, rc, win{
		provider:    provider,
		providerID:  m.providerID,
		sourcePath:  m.imageURL,
		image:       img,
		confidence:  confidence,
		matchSource: provider,
		ids:         m.ids,
	})
	if err != nil {
		return FetchResult{}, err
	}
	if m.details != nil {
		s.updateDetails(ctx, rc, *m.details)
	}
	return res, nil
}

var (
	gameBracketed = regexp.MustCompile(`[\[(][^\])]*[\])]`)
	gameGroup     = regexp.MustCompile(`-[A-Z0-9]{2,}$`)
	gameNoise     = regexp.MustCompile(`(?i)\b(?:build|patch|hotfix|update)[\s._-]*v?\d+(?:[._]\d+)*\b|\bv\d+(?:[._]\d+)*[a-z]?\b|\b(?:windows|win(?:32|64)?|linux|macos|mac|osx|x64|x86|gog|steam|repack|multi\d*)\b`)
	gameYear      = regexp.MustCompile(`\b(?:19[7-9]\d|20[0-3]\d)\b`)
)

// SanitizeGameQuery strips the scene noise game release names carry:
// bracketed tags, trailing group names, build and version numbers, OS tags
// and years.
func SanitizeGameQuery(title string) string {
	q := strings.TrimSpace(title)
	q = gameGroup.ReplaceAllString(q, "")
	q = gameBracketed.ReplaceAllString(q, " ")
	q = gameNoise.ReplaceAllString(q, " ")
	q = strings.NewReplacer(".", " ", "_", " ").Replace(q)
	q = gameYear.ReplaceAllString(q, " ")
	return strings.Join(strings.Fields(q), " ")
}

func (s *Service) fetchGame(ctx context.Context, rc *RoutingContext) (FetchResult, error) {
	if s.providers.IGDB == nil || !s.providers.IGDB.IsConfigured() {
		return notFound(rc.ReleaseID, "igdb", "no igdb match"), nil
	}

	raw := rc.ReleaseName
	if raw == "" {
		raw = rc.Title
	}
	query := SanitizeGameQuery(raw)
	if query == "" {
		query = rc.Title
	}

	games, err := s.providers.IGDB.SearchGames(ctx, query)
	observe("igdb", err, len(games) > 0)
	if err != nil {
		return FetchResult{}, err
	}

	var m match
	if len(games) > 0 {
		g := games[0]
		for _, candidate := range games {
			if candidate.CoverURL != "" {
				g = candidate
				break
			}
		}
		id := strconv.FormatInt(g.ID, 10)
		m = match{
			found:      true,
			providerID: id,
			imageURL:   g.CoverURL,
			suffix:     "cover",
			ids:        matchcache.MatchIDs{IgdbID: int64Ptr(g.ID)},
			details: &release.Details{
				Provider:    "igdb",
				ProviderID:  id,
				Title:       g.Title,
				Overview:    g.Summary,
				Genres:      g.Genres,
				ReleaseDate: yearString(g.Year),
				Rating:      g.Rating,
				Votes:       g.Votes,
			},
		}
	}
	return s.resolveSingle(ctx, rc, "igdb", "igdb", "missing igdb cover", ConfidenceGame, m)
}

func (s *Service) fetchAnime(ctx context.Context, rc *RoutingContext) (FetchResult, error) {
	if s.providers.AniList == nil {
		return notFound(rc.ReleaseID, "anilist", "no anilist match"), nil
	}

	results, err := s.providers.AniList.SearchAnime(ctx, queryTitle(rc), rc.Year)
	observe("anilist", err, len(results) > 0)
	if err != nil {
		return FetchResult{}, err
	}

	var m match
	if len(results) > 0 {
		a := results[0]
		id := strconv.Itoa(a.ID)
		m = match{
			found:      true,
			providerID: id,
			imageURL:   a.CoverURL,
			details: &release.Details{
				Provider:    "anilist",
				ProviderID:  id,
				Title:       a.Title,
				Overview:    a.Synopsis,
				Genres:      a.Genres,
				ReleaseDate: yearString(a.Year),
				Rating:      a.Rating,
			},
		}
	}
	return s.resolveSingle(ctx, rc, "anilist", "anilist", "", ConfidenceAnime, m)
}

var artistSeparators = []string{" - ", " – ", " — ", "–", "—", "|", ":"}

// SplitArtistTitle splits "Artist - Album" style titles. The artist is
// empty when no separator is found or either side would be empty.
func SplitArtistTitle(title string) (artist, album string) {
	title = strings.TrimSpace(title)
	at, sep := -1, ""
	for _, candidate := range artistSeparators {
		if i := strings.Index(title, candidate); i >= 0 && (at < 0 || i < at) {
			at, sep = i, candidate
		}
	}
	if at < 0 {
		return "", title
	}
	artist = strings.TrimSpace(title[:at])
	album = strings.TrimSpace(title[at+len(sep):])
	if artist == "" || album == "" {
		return "", title
	}
	return artist, album
}

func (s *Service) fetchAudio(ctx context.Context, rc *RoutingContext) (FetchResult, error) {
	if s.providers.Deezer == nil {
		return notFound(rc.ReleaseID, "deezer", "no deezer match"), nil
	}

	artist, album := SplitArtistTitle(rc.Title)
	results, err := s.providers.Deezer.SearchAlbums(ctx, artist, album)
	observe("deezer", err, len(results) > 0)
	if err != nil {
		return FetchResult{}, err
	}

	var m match
	if len(results) > 0 {
		a := results[0]
		id := strconv.FormatInt(a.ID, 10)
		m = match{
			found:      true,
			providerID: id,
			imageURL:   a.CoverURL,
			details: &release.Details{
				Provider:   "deezer",
				ProviderID: id,
				Title:      a.Title,
				Cast:       nonEmpty(a.Artist),
			},
		}
	}
	return s.resolveSingle(ctx, rc, "deezer", "deezer", "", ConfidenceGeneric, m)
}

var isbnPattern = regexp.MustCompile(`\b(97[89]\d{10}|\d{9}[\dXx])\b`)

// ExtractISBN finds an ISBN-13 or ISBN-10 in title and returns it together
// with the title without it.
func ExtractISBN(title string) (isbn, rest string) {
	loc := isbnPattern.FindStringSubmatchIndex(title)
	if loc == nil {
		return "", strings.TrimSpace(title)
	}
	isbn = strings.ToUpper(title[loc[2]:loc[3]])
	rest = strings.Join(strings.Fields(title[:loc[0]]+" "+title[loc[1]:]), " ")
	return isbn, rest
}

func (s *Service) fetchBook(ctx context.Context, rc *RoutingContext) (FetchResult, error) {
	if s.providers.GoogleBooks == nil {
		return notFound(rc.ReleaseID, "googlebooks", "no google books match"), nil
	}

	isbn, title := ExtractISBN(rc.Title)
	results, err := s.providers.GoogleBooks.SearchVolumes(ctx, title, isbn)
	observe("googlebooks", err, len(results) > 0)
	if err != nil {
		return FetchResult{}, err
	}

	var m match
	if len(results) > 0 {
		b := results[0]
		m = match{
			found:      true,
			providerID: b.ID,
			imageURL:   b.CoverURL,
			details: &release.Details{
				Provider:    "googlebooks",
				ProviderID:  b.ID,
				Title:       b.Title,
				Overview:    b.Synopsis,
				Genres:      b.Genres,
				ReleaseDate: yearString(b.Year),
				Rating:      b.Rating,
				Votes:       b.Votes,
				Writers:     b.Authors,
			},
		}
	}
	return s.resolveSingle(ctx, rc, "googlebooks", "google books", "", ConfidenceGeneric, m)
}

func (s *Service) fetchComic(ctx context.Context, rc *RoutingContext) (FetchResult, error) {
	if s.providers.ComicVine == nil || !s.providers.ComicVine.IsConfigured() {
		return notFound(rc.ReleaseID, "comicvine", "no comicvine match"), nil
	}

	query := queryTitle(rc)
	if rc.Year > 0 && !strings.Contains(query, strconv.Itoa(rc.Year)) {
		query += " " + strconv.Itoa(rc.Year)
	}
	results, err := s.providers.ComicVine.SearchVolumes(ctx, query)
	observe("comicvine", err, len(results) > 0)
	if err != nil {
		return FetchResult{}, err
	}

	var m match
	if len(results) > 0 {
		v := results[0]
		if rc.Year > 0 {
			for _, candidate := range results {
				if candidate.Year == rc.Year {
					v = candidate
					break
				}
			}
		}
		id := strconv.FormatInt(v.ID, 10)
		m = match{
			found:      true,
			providerID: id,
			imageURL:   v.CoverURL,
			details: &release.Details{
				Provider:    "comicvine",
				ProviderID:  id,
				Title:       v.Title,
				Overview:    v.Synopsis,
				ReleaseDate: yearString(v.Year),
			},
		}
	}
	return s.resolveSingle(ctx, rc, "comicvine", "comicvine", "", ConfidenceGeneric, m)
}

func yearString(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
