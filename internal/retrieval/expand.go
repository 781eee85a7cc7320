package retrieval

import (
	"sort"

	"github.com/HiveForensics-AI/knolo-core/internal/lexidx"
	"github.com/HiveForensics-AI/knolo-core/internal/packfmt"
	"github.com/HiveForensics-AI/knolo-core/internal/tokenizer"
)

// expansionTerm is one deterministic pseudo-relevance feedback term
// selected from the top-ranked blocks.
type expansionTerm struct {
	termID uint32
	weight float64 // per-term weight w, already clamped and scaled
}

// selectExpansionTerms implements spec §4.6 Step 7's term-selection
// half: given the current ranking (best-scored first), pick up to
// opts.Terms expansion terms drawn from retokenizing the top opts.Docs
// blocks.
func selectExpansionTerms(ranked []*candidate, blocks []packfmt.Block, lex *lexidx.Lexicon, baseTermIDs map[uint32]bool, opts ExpansionOptions) []expansionTerm {
	if len(ranked) == 0 {
		return nil
	}
	docsN := opts.Docs
	if docsN > len(ranked) {
		docsN = len(ranked)
	}
	if docsN == 0 {
		return nil
	}

	bestScore := ranked[0].score
	accum := make(map[uint32]float64)

	for i := 0; i < docsN; i++ {
		c := ranked[i]
		docWeight := 0.2
		if bestScore > 0 {
			if w := c.score / bestScore; w > docWeight {
				docWeight = w
			}
		}
		text := blocks[c.blockID].Text
		for _, term := range tokenizer.Terms(text) {
			if len(term) < opts.MinTermLength {
				continue
			}
			id, ok := lex.Lookup(term)
			if !ok || baseTermIDs[id] {
				continue
			}
			accum[id] += docWeight
		}
	}

	ids := make([]uint32, 0, len(accum))
	for id := range accum {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if accum[ids[i]] != accum[ids[j]] {
			return accum[ids[i]] > accum[ids[j]]
		}
		return ids[i] < ids[j]
	})

	termsN := opts.Terms
	if termsN > len(ids) {
		termsN = len(ids)
	}

	out := make([]expansionTerm, termsN)
	for i := 0; i < termsN; i++ {
		id := ids[i]
		out[i] = expansionTerm{termID: id, weight: opts.Weight * clamp(accum[id], 0.5, 1.5)}
	}
	return out
}

// applyExpansion rescans the posting stream for the selected expansion
// terms, adding weighted term-frequency contributions to candidates
// that already survived filtering. A block that only matches through an
// expansion term (never reached by the base free-term scan) is admitted
// as a new candidate when admit(blockID) allows it, so expansion can
// surface blocks the original query never touched. Position data is
// never populated for expansion terms: proximity still comes only from
// the base query terms.
func applyExpansion(candidates map[uint32]*candidate, postings []uint32, idOffset uint32, terms []expansionTerm, admit func(blockID uint32) bool) {
	if len(terms) == 0 {
		return
	}
	weightByTerm := make(map[uint32]float64, len(terms))
	relevant := make(map[uint32]bool, len(terms))
	for _, t := range terms {
		weightByTerm[t.termID] = t.weight
		relevant[t.termID] = true
	}

	walkPostings(postings, idOffset, func(termID, blockID uint32, positions []uint32) {
		if !relevant[termID] {
			return
		}
		c, ok := candidates[blockID]
		if !ok {
			if admit == nil || !admit(blockID) {
				return
			}
			c = newCandidate(blockID)
			candidates[blockID] = c
		}
		c.tf[termID] += float64(len(positions)) * weightByTerm[termID]
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
