package tokenizer

import "strings"

// Token is a single normalized term with its 0-based ordinal position
// within the source string. Positions increment per kept token only;
// whitespace runs collapse and contribute no position.
type Token struct {
	Term     string
	Position uint32
}

// Tokenize normalizes s and splits it into a position-tagged token stream.
// Tokenize(s) is always equal to tokenizing Normalize(s) directly — the
// function is idempotent when fed already-normalized input.
func Tokenize(s string) []Token {
	normalized := Normalize(s)
	words := strings.Fields(normalized)
	if len(words) == 0 {
		return nil
	}

	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{Term: w, Position: uint32(i)}
	}
	return tokens
}

// Terms returns just the normalized term strings from Tokenize, discarding
// positions. Used by callers (phrase matching, expansion retokenization)
// that only need the term sequence.
func Terms(s string) []string {
	tokens := Tokenize(s)
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}
