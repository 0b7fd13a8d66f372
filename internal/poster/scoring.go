package poster

import (
	"sort"

	"github.com/slipstream/posterd/internal/media"
	"github.com/slipstream/posterd/internal/metadata/tmdb"
	"github.com/slipstream/posterd/internal/titles"
)

// Acceptance thresholds.
const (
	StrongThreshold          = 0.50
	StrongThresholdAmbiguous = 0.65
	StrongThresholdCommon    = 0.75
	WeakThreshold            = 0.25
	WeakConfidenceCap        = 0.50

	TVMazeThreshold          = 0.55
	TVMazeThresholdAmbiguous = 0.65

	// ReuseMinConfidence gates title-key cache reuse.
	ReuseMinConfidence = 0.60
)

// Fixed confidences for single-provider branches.
const (
	ConfidenceGame    = 0.85
	ConfidenceAnime   = 0.70
	ConfidenceGeneric = 0.65
)

// ScoreTitle rates a candidate against the query title and year.
// Title similarity weighs 0.8, year agreement 0.2.
func ScoreTitle(query string, queryYear int, title, originalTitle string, year int) float64 {
	sim := titles.Similarity(query, title)
	if originalTitle != "" {
		if alt := titles.Similarity(query, originalTitle); alt > sim {
			sim = alt
		}
	}
	return 0.8*sim + 0.2*yearScore(queryYear, year)
}

func yearScore(want, got int) float64 {
	switch {
	case want <= 0 || got <= 0:
		return 0.5
	case want == got:
		return 1
	case want-got == 1 || got-want == 1:
		return 0.5
	default:
		return 0
	}
}

// StrongThresholdFor returns the strong acceptance threshold for a title.
func StrongThresholdFor(a titles.Analysis) float64 {
	switch {
	case a.IsCommonTitle:
		return StrongThresholdCommon
	case a.IsAmbiguous:
		return StrongThresholdAmbiguous
	default:
		return StrongThreshold
	}
}

// TVMazeThresholdFor returns the TV guide acceptance threshold.
func TVMazeThresholdFor(a titles.Analysis, category media.Category) float64 {
	if a.IsAmbiguous || category == media.CategoryEmission {
		return TVMazeThresholdAmbiguous
	}
	return TVMazeThreshold
}

// TVMazeEligible reports whether the TV guide should be asked first.
func TVMazeEligible(a titles.Analysis, category media.Category, mediaType media.MediaType, year int) bool {
	if len(a.SignificantTokens) < 2 {
		return false
	}
	if a.IsAmbiguous && a.IsCommonTitle && year <= 0 {
		return false
	}
	return category == media.CategoryEmission || category == media.CategorySerie || mediaType == media.MediaTypeSeries
}

// AdjustedConfidence lowers a match score for titles that are easy to
// confuse, clamped to [0.05, 0.99].
func AdjustedConfidence(score float64, a titles.Analysis, category media.Category) float64 {
	c := score
	if a.IsAmbiguous {
		c *= 0.85
	}
	if category == media.CategoryEmission {
		c *= 0.9
	}
	return clamp(c, 0.05, 0.99)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Candidate is a scored catalog search result.
type Candidate struct {
	tmdb.NormalizedSearchResult
	Score float64
}

// HasImage reports whether the search result carries a poster path.
func (c Candidate) HasImage() bool {
	return c.PosterPath != ""
}

// MediaType maps the catalog kind onto a media type.
func (c Candidate) MediaType() media.MediaType {
	if c.Kind == tmdb.KindTV {
		return media.MediaTypeSeries
	}
	return media.MediaTypeMovie
}

// RankCandidates scores results and sorts them best first: score, then
// image presence, vote count, popularity and finally id for stability.
func RankCandidates(query string, year int, results []tmdb.NormalizedSearchResult) []Candidate {
	ranked := make([]Candidate, 0, len(results))
	for _, r := range results {
		ranked = append(ranked, Candidate{
			NormalizedSearchResult: r,
			Score:                  ScoreTitle(query, year, r.Title, r.OriginalTitle, r.Year),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.HasImage() != b.HasImage() {
			return a.HasImage()
		}
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		return a.ID < b.ID
	})
	return ranked
}

// WithImage filters ranked candidates down to those with a poster path,
// keeping their order.
func WithImage(ranked []Candidate) []Candidate {
	out := make([]Candidate, 0, len(ranked))
	for _, c := range ranked {
		if c.HasImage() {
			out = append(out, c)
		}
	}
	return out
}

// Acceptance is the outcome of checking a candidate against the thresholds.
type Acceptance int

const (
	Rejected Acceptance = iota
	AcceptedWeak
	AcceptedStrong
)

// AcceptCandidate decides whether c is a usable match for the release.
// A known release year is trusted as is for the weak rule.
func AcceptCandidate(c Candidate, a titles.Analysis, year int, expected media.MediaType) Acceptance {
	if c.Score >= StrongThresholdFor(a) {
		return AcceptedStrong
	}
	if c.Score >= WeakThreshold && weakEligible(c, a, year, expected) {
		return AcceptedWeak
	}
	return Rejected
}

func weakEligible(c Candidate, a titles.Analysis, year int, expected media.MediaType) bool {
	if a.IsAmbiguous || a.IsCommonTitle || year <= 0 {
		return false
	}
	if c.Year != year || c.MediaType() != expected {
		return false
	}
	candidateTokens := titles.SignificantTokens(titles.Tokens(c.Title))
	if c.OriginalTitle != "" {
		candidateTokens = append(candidateTokens, titles.SignificantTokens(titles.Tokens(c.OriginalTitle))...)
	}
	return titles.Overlap(a.SignificantTokens, candidateTokens) >= 1
}

// MatchConfidence is the cache confidence for an accepted catalog match.
func MatchConfidence(c Candidate, acc Acceptance, a titles.Analysis, category media.Category) float64 {
	conf := AdjustedConfidence(c.Score, a, category)
	if acc == AcceptedWeak && conf > WeakConfidenceCap {
		conf = WeakConfidenceCap
	}
	return conf
}
