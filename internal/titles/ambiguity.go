package titles

import (
	"github.com/slipstream/posterd/internal/media"
)

var stopwords = toSet(
	"the", "a", "an", "of", "and", "or", "in", "on", "at", "to", "for", "with", "from", "by",
	"le", "la", "les", "l", "de", "du", "des", "d", "un", "une", "et", "en", "au", "aux",
	"der", "die", "das", "el", "los", "las", "il", "lo",
)

// Words that on their own say little about which work a title means.
var commonWords = toSet(
	"home", "love", "life", "family", "house", "game", "games", "show", "night", "day", "time",
	"world", "news", "story", "stories", "live", "star", "stars", "war", "man", "woman", "girl",
	"boy", "friends", "heroes", "lost", "dark", "light", "mother", "father", "king", "queen",
	"city", "end", "first", "last", "new", "one", "two", "big", "little", "best", "top",
	"amour", "vie", "maison", "jeu", "monde", "histoire", "nuit", "jour", "homme", "femme",
	"roi", "reine", "ville", "grand", "petit", "nouveau", "premier",
)

// Tokens that usually identify a broadcaster or a recurring programme
// rather than a single work.
var channelTokens = toSet(
	"tf1", "m6", "w9", "c8", "tmc", "nrj12", "arte", "canal", "france2", "france3", "france5",
	"bfm", "bfmtv", "lci", "cnews", "bbc", "itv", "cnn", "hbo", "abc", "nbc", "cbs", "fox",
	"journal", "jt", "magazine", "hebdo", "matinale", "replay", "direct", "quotidien", "talk",
)

// Analysis is the ambiguity assessment of one title.
type Analysis struct {
	NormalizedTitle        string   `json:"normalizedTitle"`
	SignificantTokens      []string `json:"significantTokens"`
	IsAmbiguous            bool     `json:"isAmbiguous"`
	IsCommonTitle          bool     `json:"isCommonTitle"`
	LikelyChannelOrProgram bool     `json:"likelyChannelOrProgram"`
}

// Analyze scores how likely title is to collide with unrelated works.
func Analyze(title string, category media.Category) Analysis {
	normalized := Normalize(title)
	tokens := Tokens(title)
	sig := SignificantTokens(tokens)

	a := Analysis{
		NormalizedTitle:   normalized,
		SignificantTokens: sig,
	}

	common := 0
	for _, t := range sig {
		if _, ok := commonWords[t]; ok {
			common++
		}
	}
	a.IsCommonTitle = len(sig) > 0 && len(sig) <= 2 && common == len(sig)

	channel := false
	for _, t := range tokens {
		if _, ok := channelTokens[t]; ok {
			channel = true
			break
		}
	}
	a.LikelyChannelOrProgram = channel || (category == media.CategoryEmission && len(sig) <= 1)

	a.IsAmbiguous = len(sig) <= 1 || len([]rune(normalized)) <= 4 || a.IsCommonTitle || a.LikelyChannelOrProgram
	return a
}

// SignificantTokens filters stopwords and single characters out of tokens.
func SignificantTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len([]rune(t)) < 2 {
			continue
		}
		if _, ok := stopwords[t]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Overlap counts the distinct tokens present in both lists.
func Overlap(a, b []string) int {
	set := toSet(a...)
	seen := make(map[string]struct{}, len(b))
	n := 0
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// Similarity compares two titles: 1 for identical normalized forms,
// otherwise the Dice coefficient of their token sets.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	ta, tb := toSet(Tokens(na)...), toSet(Tokens(nb)...)
	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ta)+len(tb))
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
