package knolo

import (
	"github.com/HiveForensics-AI/knolo-core/internal/hit"
	"github.com/HiveForensics-AI/knolo-core/internal/patchproj"
)

// Budget selects how much of a hit list MakeContextPatch projects into
// a ContextPatch.
type Budget string

const (
	BudgetMini  Budget = Budget(patchproj.Mini)
	BudgetSmall Budget = Budget(patchproj.Small)
	BudgetFull  Budget = Budget(patchproj.Full)
)

// Snippet is one truncated hit inside a ContextPatch.
type Snippet struct {
	Text   string
	Source string
}

// ContextPatch is a budgeted, structured projection over a ranked hit
// list, ready for downstream prompt assembly.
type ContextPatch struct {
	Background  []string
	Snippets    []Snippet
	Definitions []string
	Facts       []string
}

// MakeContextPatch projects hits into a ContextPatch bounded by budget.
func MakeContextPatch(hits []Hit, budget Budget) ContextPatch {
	internalHits := make([]hit.Hit, len(hits))
	for i, h := range hits {
		internalHits[i] = hit.Hit{BlockID: h.BlockID, Score: h.Score, Text: h.Text, Source: h.Source, Namespace: h.Namespace}
	}

	projected := patchproj.Project(internalHits, patchproj.Budget(budget))

	snippets := make([]Snippet, len(projected.Snippets))
	for i, s := range projected.Snippets {
		snippets[i] = Snippet{Text: s.Text, Source: s.Source}
	}

	return ContextPatch{
		Background:  projected.Background,
		Snippets:    snippets,
		Definitions: projected.Definitions,
		Facts:       projected.Facts,
	}
}
