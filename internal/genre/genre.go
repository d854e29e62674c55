// Package genre normalizes user-typed genre input into canonical subject
// terms the lookup service and the cached genre tags understand.
package genre

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a hyphenated lowercase slug.
// "Science Fiction" -> "science-fiction".
// "Sci-Fi/Fantasy" -> "sci-fi-fantasy".
func Slugify(s string) string {
	// Decompose accented characters, then drop non-ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// aliases map slugs of common variations to the canonical subject term.
var aliases = map[string]string{
	"sci-fi":          "science fiction",
	"scifi":           "science fiction",
	"sf":              "science fiction",
	"science-fiction": "science fiction",

	"high-fantasy": "fantasy",
	"epic-fantasy": "fantasy",

	"ya":          "young adult",
	"young-adult": "young adult",
	"teen":        "young adult",

	"suspense":         "thriller",
	"mystery-thriller": "mystery",
	"whodunit":         "mystery",

	"scary": "horror",

	"historical":         "historical fiction",
	"historic":           "historical fiction",
	"historical-fiction": "historical fiction",

	"self-help": "self-help",
	"selfhelp":  "self-help",
	"self-improvement": "self-help",

	"bio":       "biography",
	"biografie": "biography",
	"memoir":    "biography",
	"memoirs":   "biography",

	"detective": "crime",
	"noir":      "crime",

	"kids":     "children",
	"children": "children",
}

// Canonical maps a raw user genre to the term used for cache matching and
// external subject lookups. Unknown genres pass through as lowercase words.
func Canonical(raw string) string {
	slug := Slugify(raw)
	if slug == "" {
		return ""
	}
	if canonical, ok := aliases[slug]; ok {
		return canonical
	}
	return strings.ReplaceAll(slug, "-", " ")
}

// Defaults rotate daily for users with no derivable genre preference.
var Defaults = []string{
	"fantasy",
	"science fiction",
	"mystery",
	"history",
	"romance",
	"adventure",
	"biography",
}

// DefaultFor picks the default genre for a given day of the year.
func DefaultFor(yearDay int) string {
	return Defaults[yearDay%len(Defaults)]
}
