// Package titles normalizes release titles and estimates how ambiguous they are.
package titles

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/moistari/rls"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var yearPattern = regexp.MustCompile(`(?:^|[\s.(\[_-])((?:19|20)\d{2})(?:$|[\s.)\]_-])`)

// StripDiacritics removes combining marks ("Amélie" becomes "Amelie").
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// TrimTrailingPunctuation drops punctuation and spaces at the end of s.
func TrimTrailingPunctuation(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}

// Normalize returns the comparison form of a title: diacritics stripped,
// lower-cased, every run of non-alphanumerics collapsed to one space.
func Normalize(s string) string {
	s = strings.ToLower(StripDiacritics(s))
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
			continue
		}
		space = true
	}
	return b.String()
}

// Tokens splits the normalized form of s into words.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// Display title-cases s when it carries no upper-case letters at all,
// which is how scene names usually arrive.
func Display(s string) string {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if unicode.IsUpper(r) {
			return s
		}
	}
	return cases.Title(language.Und).String(s)
}

// Parsed is what can be recovered from a raw release name.
type Parsed struct {
	Title   string
	Year    int
	Season  int
	Episode int
}

// ParseRelease extracts title, year, season and episode from a scene-style
// video release name.
func ParseRelease(raw string) Parsed {
	r := rls.ParseString(raw)
	p := Parsed{
		Title:   strings.TrimSpace(r.Title),
		Year:    r.Year,
		Season:  r.Series,
		Episode: r.Episode,
	}
	if p.Title == "" {
		p.Title = collapse(raw)
	}
	p.Title = TrimTrailingPunctuation(Display(p.Title))
	return p
}

// ParsePlain cleans separators out of a non-video name and picks up a
// standalone four-digit year, leaving everything else in the title.
func ParsePlain(raw string) Parsed {
	p := Parsed{Title: TrimTrailingPunctuation(collapse(raw))}
	if m := yearPattern.FindStringSubmatch(" " + raw + " "); m != nil {
		p.Year, _ = strconv.Atoi(m[1])
	}
	return p
}

func collapse(s string) string {
	s = strings.NewReplacer(".", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

