// Package tokenizer implements the engine's normalization, tokenization,
// and phrase-extraction contract: a pure, locale-independent function of
// its input string, producing identical output across platforms.
package tokenizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks performs compatibility decomposition (NFKD) and removes the
// resulting combining marks, the same "decompose, then drop Mn runes"
// idiom used for accent stripping elsewhere in the ecosystem.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// disallowed matches any rune that is not a letter, digit, whitespace, or
// hyphen. Each disallowed rune is replaced by its own single space.
var disallowed = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)

// Normalize applies the engine's text-normalization contract: compatibility
// decomposition, combining-mark removal, lowercasing, and replacement of
// every character that is not a letter, digit, whitespace, or hyphen with a
// single space. It does not collapse whitespace runs or trim; callers that
// need tokens should call Tokenize instead.
func Normalize(s string) string {
	decomposed, _, err := transform.String(stripMarks, s)
	if err != nil {
		// transform.String only fails on malformed encodings the
		// Remove/NFKD transformers themselves don't produce; fall back to
		// the original string rather than lose the input.
		decomposed = s
	}
	lowered := strings.ToLower(decomposed)
	return disallowed.ReplaceAllString(lowered, " ")
}
