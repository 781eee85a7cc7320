// Package patchproj projects a ranked hit list into a budgeted,
// structured object suitable for assembling an LLM prompt. It is a pure
// function of its input: no I/O, no knowledge of how hits were scored.
package patchproj

import (
	"regexp"
	"strings"

	"github.com/HiveForensics-AI/knolo-core/internal/hit"
)

// Budget names one of the three fixed snippet budgets.
type Budget string

const (
	Mini  Budget = "mini"
	Small Budget = "small"
	Full  Budget = "full"
)

type budgetLimits struct {
	maxSnippets int
	maxChars    int
}

var limits = map[Budget]budgetLimits{
	Mini:  {maxSnippets: 3, maxChars: 240},
	Small: {maxSnippets: 6, maxChars: 420},
	Full:  {maxSnippets: 10, maxChars: 900},
}

// Snippet is one truncated hit projected into the patch.
type Snippet struct {
	Text   string
	Source string
}

// ContextPatch is the stable output shape handed to downstream prompt
// assembly. Definitions and Facts are always empty; they exist so the
// shape stays stable if a future caller populates them from elsewhere.
type ContextPatch struct {
	Background  []string
	Snippets    []Snippet
	Definitions []string
	Facts       []string
}

// firstSentence bounds a candidate first sentence to 10-200 characters,
// terminated by '.', '!', or '?'.
var firstSentence = regexp.MustCompile(`^.{10,200}?[.!?]`)

// Project builds a ContextPatch from hits, bounded by budget. An unknown
// budget is treated as Small.
func Project(hits []hit.Hit, budget Budget) ContextPatch {
	lim, ok := limits[budget]
	if !ok {
		lim = limits[Small]
	}

	n := len(hits)
	if n > lim.maxSnippets {
		n = lim.maxSnippets
	}

	snippets := make([]Snippet, n)
	for i := 0; i < n; i++ {
		snippets[i] = Snippet{
			Text:   truncate(hits[i].Text, lim.maxChars),
			Source: hits[i].Source,
		}
	}

	var background []string
	for i := 0; i < n && i < 2; i++ {
		background = append(background, extractBackground(hits[i].Text))
	}

	return ContextPatch{
		Background:  background,
		Snippets:    snippets,
		Definitions: []string{},
		Facts:       []string{},
	}
}

func truncate(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + "..."
}

func extractBackground(text string) string {
	if m := firstSentence.FindString(text); m != "" {
		return m
	}
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= 160 {
		return string(runes)
	}
	return string(runes[:160])
}
