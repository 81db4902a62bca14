package analysis

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// showSuffixPattern matches ` - From "Wicked"` and anything after it.
	showSuffixPattern = regexp.MustCompile(` - From ["“][^"”]*["”].*$`)

	// innermostParenPattern matches one parenthetical with no nested parens.
	innermostParenPattern = regexp.MustCompile(`\([^()]*\)`)
)

// Normalize maps a raw catalog title to the key compared against engagement
// song names. It removes every parenthetical segment and a trailing show
// attribution, then collapses whitespace. It is idempotent.
func Normalize(title string) string {
	out := title
	for {
		next := normalizeOnce(out)
		if next == out {
			return out
		}
		out = next
	}
}

func normalizeOnce(s string) string {
	s = innermostParenPattern.ReplaceAllString(s, " ")
	s = showSuffixPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalKey is a looser key than Normalize: case folded, accents removed,
// apostrophes dropped and all other punctuation turned into single spaces.
func CanonicalKey(title string) string {
	s := Normalize(title)

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = cases.Fold().String(s)

	var out strings.Builder
	lastSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			out.WriteRune(r)
			lastSpace = false
		case r == '\'' || r == '’' || r == '‘':
			// "I'm" and "Im" share a key.
		default:
			if !lastSpace {
				out.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(out.String())
}
