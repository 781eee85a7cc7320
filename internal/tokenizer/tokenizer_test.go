package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_LowercasesAndFoldsDiacritics(t *testing.T) {
	// Given: text with diacritics and mixed case
	text := "Café RÉSUMÉ"

	// When: normalizing
	got := Normalize(text)

	// Then: combining marks are stripped and the result is lowercase
	assert.Equal(t, "cafe resume", got)
}

func TestNormalize_ReplacesPunctuationWithSpace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"parentheses", "func(arg)", "func arg "},
		{"keeps hyphen", "well-known term", "well-known term"},
		{"keeps digits", "ipv4 address", "ipv4 address"},
		{"underscore becomes space", "snake_case_name", "snake case name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestTokenize_AssignsZeroBasedPositionsToKeptTokensOnly(t *testing.T) {
	// Given: text with a run of whitespace and punctuation between words
	text := "alpha   beta, gamma"

	// When: tokenizing
	tokens := Tokenize(text)

	// Then: positions increment only across kept tokens
	require.Len(t, tokens, 3)
	assert.Equal(t, Token{"alpha", 0}, tokens[0])
	assert.Equal(t, Token{"beta", 1}, tokens[1])
	assert.Equal(t, Token{"gamma", 2}, tokens[2])
}

func TestTokenize_EmptyStringYieldsNoTokens(t *testing.T) {
	assert.Nil(t, Tokenize(""))
	assert.Nil(t, Tokenize("   "))
	assert.Nil(t, Tokenize("!!!"))
}

func TestTokenize_IdempotentOnNormalizedInput(t *testing.T) {
	// Invariant: tokenize(s) == tokenize(normalize(s))
	text := "Throttle LIMITS event-rate across the Bridge."
	a := Tokenize(text)
	b := Tokenize(Normalize(text))
	assert.Equal(t, a, b)
}

func TestExtractPhrases_StraightAndCurlyQuotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Phrase
	}{
		{
			name:  "straight quotes",
			input: `find "react native bridge" events`,
			want:  []Phrase{{Terms: []string{"react", "native", "bridge"}}},
		},
		{
			name:  "curly quotes",
			input: "find “react native bridge” events",
			want:  []Phrase{{Terms: []string{"react", "native", "bridge"}}},
		},
		{
			name:  "multiple phrases in order",
			input: `"alpha beta" and "gamma delta"`,
			want: []Phrase{
				{Terms: []string{"alpha", "beta"}},
				{Terms: []string{"gamma", "delta"}},
			},
		},
		{
			name:  "empty quoted span discarded",
			input: `"" and "real phrase"`,
			want:  []Phrase{{Terms: []string{"real", "phrase"}}},
		},
		{
			name:  "no quotes",
			input: "no phrases here",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPhrases(tt.input))
		})
	}
}
