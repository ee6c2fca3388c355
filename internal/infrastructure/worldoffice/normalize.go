package worldoffice

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeCityName canonicalizes a city name for comparison:
// trim, uppercase, strip diacritics (NFD + drop combining marks), and
// collapse whitespace runs to a single space. Stored names and queries must
// go through the same function or lookups silently miss.
func NormalizeCityName(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))

	// Transformers carry state across calls, so build a fresh chain each time.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	return whitespaceRun.ReplaceAllString(s, " ")
}
