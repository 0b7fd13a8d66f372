package titles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slipstream/posterd/internal/media"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Amélie":                     "amelie",
		"  The Office (US)!! ":       "the office us",
		"Léon: The Professional...":  "leon the professional",
		"Spider-Man: No Way Home":    "spider man no way home",
		"":                           "",
		"Ça & là":                    "ca la",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestTrimTrailingPunctuation(t *testing.T) {
	assert.Equal(t, "Who Framed Roger Rabbit", TrimTrailingPunctuation("Who Framed Roger Rabbit?! "))
	assert.Equal(t, "Se7en", TrimTrailingPunctuation("Se7en"))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "The Office", Display("the office"))
	assert.Equal(t, "iCarly", Display("iCarly"))
}

func TestParseRelease(t *testing.T) {
	p := ParseRelease("The.Office.US.S02E05.720p.WEB-DL.x264-GROUP")
	assert.Equal(t, 2, p.Season)
	assert.Equal(t, 5, p.Episode)
	assert.Contains(t, p.Title, "Office")

	p = ParseRelease("Inception.2010.1080p.BluRay.x264-GRP")
	assert.Equal(t, "Inception", p.Title)
	assert.Equal(t, 2010, p.Year)
}

func TestParsePlain(t *testing.T) {
	p := ParsePlain("Dune 9780441013593")
	assert.Equal(t, "Dune 9780441013593", p.Title)
	assert.Equal(t, 0, p.Year)

	p = ParsePlain("Saga.Vol.1.2012")
	assert.Equal(t, "Saga Vol 1 2012", p.Title)
	assert.Equal(t, 2012, p.Year)
}

func TestAnalyze(t *testing.T) {
	a := Analyze("Breaking Bad", media.CategorySerie)
	assert.False(t, a.IsAmbiguous)
	assert.Equal(t, []string{"breaking", "bad"}, a.SignificantTokens)

	a = Analyze("Home", media.CategoryFilm)
	assert.True(t, a.IsAmbiguous)
	assert.True(t, a.IsCommonTitle)

	a = Analyze("Le Journal de 20h", media.CategoryEmission)
	assert.True(t, a.LikelyChannelOrProgram)
	assert.True(t, a.IsAmbiguous)

	a = Analyze("The Office", media.CategorySerie)
	assert.True(t, a.IsAmbiguous)
	assert.False(t, a.IsCommonTitle)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("The Office", "the office!"))
	assert.InDelta(t, 0.8, Similarity("the office us", "the office"), 0.001)
	assert.Equal(t, 0.0, Similarity("", "anything"))
	assert.Equal(t, 0.0, Similarity("alpha", "beta"))
}

func TestOverlap(t *testing.T) {
	assert.Equal(t, 1, Overlap([]string{"office", "us"}, []string{"office", "office"}))
	assert.Equal(t, 0, Overlap(nil, []string{"office"}))
}
