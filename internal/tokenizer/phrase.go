package tokenizer

import "regexp"

// quoted matches a straight-double-quoted span or a curly-quoted span
// (“…” or ”…”). Each alternative captures its inner content in its
// own group so ExtractPhrases can tell which one matched.
var quoted = regexp.MustCompile(`"([^"]*)"|“([^”]*)”|”([^”]*)”`)

// Phrase is an ordered sequence of normalized terms drawn from one quoted
// span of the source text.
type Phrase struct {
	Terms []string
}

// ExtractPhrases scans s for quoted spans (both straight and curly quote
// pairs) and tokenizes each span's contents through the same normalization
// path as free-text tokenization. A phrase whose contents normalize to zero
// tokens is discarded — an empty or punctuation-only quoted span carries no
// retrieval constraint.
func ExtractPhrases(s string) []Phrase {
	matches := quoted.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}

	phrases := make([]Phrase, 0, len(matches))
	for _, m := range matches {
		inner := m[1]
		if inner == "" {
			inner = m[2]
		}
		if inner == "" {
			inner = m[3]
		}
		terms := Terms(inner)
		if len(terms) == 0 {
			continue
		}
		phrases = append(phrases, Phrase{Terms: terms})
	}
	return phrases
}
