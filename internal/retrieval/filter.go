package retrieval

import (
	"strings"

	"github.com/HiveForensics-AI/knolo-core/internal/lexidx"
	"github.com/HiveForensics-AI/knolo-core/internal/tokenizer"
)

// phraseTermSet unions the term ids (that exist in lex) drawn from a set
// of phrases.
func phraseTermSet(lex *lexidx.Lexicon, phrases [][]string) map[uint32]bool {
	set := make(map[uint32]bool)
	for _, phrase := range phrases {
		for _, term := range phrase {
			if id, ok := lex.Lookup(term); ok {
				set[id] = true
			}
		}
	}
	return set
}

// normalizeLabel normalizes a stored or supplied namespace/source label
// the same way query text is normalized, collapsing internal whitespace
// so multi-word labels compare equal regardless of spacing.
func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(tokenizer.Normalize(s)), " ")
}

func labelMatches(value string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	normalized := normalizeLabel(value)
	for _, a := range allowed {
		if normalizeLabel(a) == normalized {
			return true
		}
	}
	return false
}

// containsContiguous reports whether phrase appears as an ordered,
// contiguous run within tokens.
func containsContiguous(tokens []string, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for start := 0; start+len(phrase) <= len(tokens); start++ {
		match := true
		for j, term := range phrase {
			if tokens[start+j] != term {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func uniqueSet(terms []string) map[string]bool {
	set := make(map[string]bool, len(terms))
	for _, t := range terms {
		set[t] = true
	}
	return set
}

// headingScore computes |unique(queryTerms) ∩ unique(headingTerms)| /
// |unique(queryTerms)|, or 0 if heading is absent or queryTerms is empty.
func headingScore(queryTerms []string, heading *string) float64 {
	if heading == nil || *heading == "" {
		return 0
	}
	qSet := uniqueSet(queryTerms)
	if len(qSet) == 0 {
		return 0
	}
	hSet := uniqueSet(tokenizer.Terms(*heading))
	overlap := 0
	for t := range qSet {
		if hSet[t] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(qSet))
}
