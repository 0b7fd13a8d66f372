package poster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/posterd/internal/media"
	"github.com/slipstream/posterd/internal/metadata/tmdb"
	"github.com/slipstream/posterd/internal/titles"
)

func TestScoreTitle(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		year     int
		title    string
		original string
		candYear int
		want     float64
	}{
		{"exact title and year", "The Office", 2005, "The Office", "", 2005, 1.0},
		{"exact title unknown year", "The Office", 0, "The Office", "", 2005, 0.9},
		{"exact title year off by one", "The Office", 2005, "The Office", "", 2004, 0.9},
		{"exact title wrong year", "The Office", 2005, "The Office", "", 2001, 0.8},
		{"original title matches", "Amelie", 2001, "Amélie from Montmartre", "Amélie", 2001, 1.0},
		{"unrelated", "Heat", 1995, "Cold Mountain", "", 2003, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreTitle(tt.query, tt.year, tt.title, tt.original, tt.candYear)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStrongThresholdFor(t *testing.T) {
	assert.Equal(t, StrongThreshold, StrongThresholdFor(titles.Analysis{}))
	assert.Equal(t, StrongThresholdAmbiguous, StrongThresholdFor(titles.Analysis{IsAmbiguous: true}))
	assert.Equal(t, StrongThresholdCommon, StrongThresholdFor(titles.Analysis{IsAmbiguous: true, IsCommonTitle: true}))
}

func TestTVMazeThresholdFor(t *testing.T) {
	assert.Equal(t, TVMazeThreshold, TVMazeThresholdFor(titles.Analysis{}, media.CategorySerie))
	assert.Equal(t, TVMazeThresholdAmbiguous, TVMazeThresholdFor(titles.Analysis{}, media.CategoryEmission))
	assert.Equal(t, TVMazeThresholdAmbiguous, TVMazeThresholdFor(titles.Analysis{IsAmbiguous: true}, media.CategorySerie))
}

func TestTVMazeEligible(t *testing.T) {
	two := titles.Analysis{SignificantTokens: []string{"breaking", "bad"}}
	commonAmbiguous := titles.Analysis{SignificantTokens: []string{"love", "life"}, IsAmbiguous: true, IsCommonTitle: true}

	assert.True(t, TVMazeEligible(two, media.CategorySerie, media.MediaTypeSeries, 0))
	assert.True(t, TVMazeEligible(two, media.CategoryEmission, media.MediaTypeSeries, 0))
	assert.True(t, TVMazeEligible(two, media.CategoryFilm, media.MediaTypeSeries, 0), "film with a season resolves to series")
	assert.False(t, TVMazeEligible(two, media.CategoryFilm, media.MediaTypeMovie, 0))
	assert.False(t, TVMazeEligible(titles.Analysis{SignificantTokens: []string{"office"}}, media.CategorySerie, media.MediaTypeSeries, 2005))
	assert.False(t, TVMazeEligible(commonAmbiguous, media.CategorySerie, media.MediaTypeSeries, 0))
	assert.True(t, TVMazeEligible(commonAmbiguous, media.CategorySerie, media.MediaTypeSeries, 2012))
}

func TestAdjustedConfidence(t *testing.T) {
	assert.InDelta(t, 0.8, AdjustedConfidence(0.8, titles.Analysis{}, media.CategoryFilm), 1e-9)
	assert.InDelta(t, 0.68, AdjustedConfidence(0.8, titles.Analysis{IsAmbiguous: true}, media.CategoryFilm), 1e-9)
	assert.InDelta(t, 0.72, AdjustedConfidence(0.8, titles.Analysis{}, media.CategoryEmission), 1e-9)
	assert.InDelta(t, 0.99, AdjustedConfidence(1.0, titles.Analysis{}, media.CategoryFilm), 1e-9)
	assert.InDelta(t, 0.05, AdjustedConfidence(0.01, titles.Analysis{}, media.CategoryFilm), 1e-9)
}

func TestRankCandidates(t *testing.T) {
	results := []tmdb.NormalizedSearchResult{
		{Kind: tmdb.KindMovie, ID: 30, Title: "Dune", Year: 2021, VoteCount: 100},
		{Kind: tmdb.KindMovie, ID: 20, Title: "Dune", Year: 2021, PosterPath: "/a.jpg", VoteCount: 10},
		{Kind: tmdb.KindMovie, ID: 10, Title: "Dune", Year: 2021, PosterPath: "/b.jpg", VoteCount: 10, Popularity: 50},
		{Kind: tmdb.KindMovie, ID: 5, Title: "Dune", Year: 2021, PosterPath: "/c.jpg", VoteCount: 10, Popularity: 50},
		{Kind: tmdb.KindMovie, ID: 841, Title: "Dune", Year: 1984, PosterPath: "/d.jpg", VoteCount: 5000},
	}

	ranked := RankCandidates("Dune", 2021, results)
	require.Len(t, ranked, 5)

	var ids []int
	for _, c := range ranked {
		ids = append(ids, c.ID)
	}
	// Equal scores: image first, then votes, then popularity, then id.
	assert.Equal(t, []int{5, 10, 20, 30, 841}, ids)

	withImage := WithImage(ranked)
	require.Len(t, withImage, 4)
	assert.Equal(t, 5, withImage[0].ID)
	assert.Equal(t, 841, withImage[3].ID)
}

func TestAcceptCandidate(t *testing.T) {
	plain := titles.Analyze("Le Fabuleux Destin d'Amelie Poulain", media.CategoryFilm)
	require.False(t, plain.IsAmbiguous)

	candidate := func(title string, year int, kind tmdb.Kind, score float64) Candidate {
		return Candidate{
			NormalizedSearchResult: tmdb.NormalizedSearchResult{Kind: kind, ID: 1, Title: title, Year: year},
			Score:                  score,
		}
	}

	tests := []struct {
		name     string
		c        Candidate
		analysis titles.Analysis
		year     int
		want     Acceptance
	}{
		{"strong", candidate("Amelie", 2001, tmdb.KindMovie, 0.6), plain, 2001, AcceptedStrong},
		{"strong needs more when ambiguous", candidate("Heat", 1995, tmdb.KindMovie, 0.6), titles.Analysis{IsAmbiguous: true}, 1995, Rejected},
		{"weak with exact year and overlap", candidate("Amelie", 2001, tmdb.KindMovie, 0.3), plain, 2001, AcceptedWeak},
		{"weak rejects other year", candidate("Amelie", 2002, tmdb.KindMovie, 0.3), plain, 2001, Rejected},
		{"weak rejects other media type", candidate("Amelie", 2001, tmdb.KindTV, 0.3), plain, 2001, Rejected},
		{"weak rejects without overlap", candidate("Montmartre", 2001, tmdb.KindMovie, 0.3), plain, 2001, Rejected},
		{"weak rejects unknown year", candidate("Amelie", 2001, tmdb.KindMovie, 0.3), plain, 0, Rejected},
		{"below weak threshold", candidate("Amelie", 2001, tmdb.KindMovie, 0.2), plain, 2001, Rejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AcceptCandidate(tt.c, tt.analysis, tt.year, media.MediaTypeMovie))
		})
	}
}

func TestMatchConfidence_WeakIsCapped(t *testing.T) {
	c := Candidate{Score: 0.9}
	assert.InDelta(t, 0.9, MatchConfidence(c, AcceptedStrong, titles.Analysis{}, media.CategoryFilm), 1e-9)
	assert.InDelta(t, WeakConfidenceCap, MatchConfidence(c, AcceptedWeak, titles.Analysis{}, media.CategoryFilm), 1e-9)
}
