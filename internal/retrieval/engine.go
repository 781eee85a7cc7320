// Package retrieval implements the query engine (spec §4.6): candidate
// gathering from the positional posting stream, BM25L scoring with a
// proximity bonus, deterministic pseudo-relevance expansion, KNS
// tie-breaking, and an optional int8 semantic rerank.
package retrieval

import (
	"sort"

	kerrors "github.com/HiveForensics-AI/knolo-core/internal/errors"
	"github.com/HiveForensics-AI/knolo-core/internal/hit"
	"github.com/HiveForensics-AI/knolo-core/internal/packfmt"
	"github.com/HiveForensics-AI/knolo-core/internal/signature"
	"github.com/HiveForensics-AI/knolo-core/internal/tokenizer"
)

const knsStabilizer = 0.02

// Query runs the ranking pipeline against pack and returns the ranked
// hit pool (at most opts.TopK*5 hits, best first) for the diversifier;
// it does not diversify. opts is assumed fully resolved (defaults
// already merged by the caller); Query validates it before scanning.
func Query(pack *packfmt.Pack, queryText string, opts Options) ([]hit.Hit, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}

	freeTerms := tokenizer.Terms(queryText)
	quotedPhrases := tokenizer.ExtractPhrases(queryText)

	var requiredPhrases [][]string
	for _, p := range quotedPhrases {
		requiredPhrases = append(requiredPhrases, p.Terms)
	}
	for _, raw := range opts.RequirePhrases {
		if terms := tokenizer.Terms(raw); len(terms) > 0 {
			requiredPhrases = append(requiredPhrases, terms)
		}
	}

	baseTermIDs := make(map[uint32]bool)
	for _, t := range freeTerms {
		if id, ok := pack.Lexicon.Lookup(t); ok {
			baseTermIDs[id] = true
		}
	}

	idOffset := pack.BlockIDOffset()
	result := scan(pack.Postings, idOffset, baseTermIDs)

	if len(result.candidates) == 0 && len(requiredPhrases) > 0 {
		result = scan(pack.Postings, idOffset, phraseTermSet(pack.Lexicon, requiredPhrases))
	}

	filtered := applyFilters(result.candidates, pack.Blocks, freeTerms, requiredPhrases, quotedPhrases, opts)
	if len(filtered) == 0 {
		return nil, nil
	}

	avgLen := averageBlockLen(pack)
	docCount := pack.Stats.Blocks

	queryTermIDs := make([]uint32, 0, len(baseTermIDs))
	for id := range baseTermIDs {
		queryTermIDs = append(queryTermIDs, id)
	}

	scoreAll := func(termIDs []uint32) {
		for _, c := range filtered {
			lenB := float64(pack.Blocks[c.blockID].Len)
			if lenB == 0 {
				for _, tf := range c.tf {
					lenB += tf
				}
			}
			span, ok := minCoverSpan(c.pos)
			base := bm25l(c, termIDs, result.df, docCount, lenB, avgLen)
			base *= proximityMultiplier(span, ok)
			if c.hasPhrase {
				base *= 1 + phraseBoost
			}
			base *= 1 + headingBoost*c.headingScore
			c.score = base
		}
	}
	scoreAll(queryTermIDs)

	ranked := sortedCandidates(filtered)

	allTermIDs := queryTermIDs
	if opts.Expansion.Enabled {
		expansionTerms := selectExpansionTerms(ranked, pack.Blocks, pack.Lexicon, baseTermIDs, opts.Expansion)
		if len(expansionTerms) > 0 {
			admit := func(blockID uint32) bool {
				block := pack.Blocks[blockID]
				if !labelMatches(namespaceOf(block), opts.Namespace) || !labelMatches(sourceOf(block), opts.Source) {
					return false
				}
				if len(requiredPhrases) == 0 {
					return true
				}
				blockTokens := tokenizer.Terms(block.Text)
				for _, phrase := range requiredPhrases {
					if !containsContiguous(blockTokens, phrase) {
						return false
					}
				}
				return true
			}
			before := len(filtered)
			applyExpansion(filtered, pack.Postings, idOffset, expansionTerms, admit)
			if len(filtered) != before {
				for blockID, c := range filtered {
					block := pack.Blocks[blockID]
					if c.headingScore == 0 && block.Heading != nil {
						c.headingScore = headingScore(freeTerms, block.Heading)
					}
					if !c.hasPhrase && len(requiredPhrases) > 0 {
						c.hasPhrase = true
					}
				}
			}
			for _, t := range expansionTerms {
				allTermIDs = append(allTermIDs, t.termID)
			}
			scoreAll(allTermIDs)
			ranked = sortedCandidates(filtered)
		}
	}

	applyKNSTieBreak(ranked, queryText, pack.Blocks)
	ranked = sortedCandidates(filtered)

	if opts.Semantic.Enabled && pack.HasSemantic() {
		scores := make([]float64, len(ranked))
		for i, c := range ranked {
			scores[i] = c.score
		}
		lexConf := LexicalConfidence(scores)
		if opts.Semantic.Force || lexConf < opts.Semantic.MinLexConfidence {
			ranked = applySemanticRerank(ranked, pack.Semantic, opts.Semantic.QueryEmbedding, opts.Semantic)
		}
	} else if opts.Semantic.Enabled && opts.Semantic.Force && !pack.HasSemantic() {
		return nil, kerrors.New(kerrors.SemanticMissing, "semantic", "semantic rerank was forced but the pack has no semantic section")
	}

	if opts.MinScore != nil {
		ranked = filterByMinScore(ranked, *opts.MinScore)
	}

	poolSize := opts.TopK * 5
	if poolSize > len(ranked) {
		poolSize = len(ranked)
	}
	pool := make([]hit.Hit, poolSize)
	for i, c := range ranked[:poolSize] {
		block := pack.Blocks[c.blockID]
		source := ""
		if block.DocID != nil {
			source = *block.DocID
		}
		namespace := ""
		if block.Namespace != nil {
			namespace = *block.Namespace
		}
		pool[i] = hit.Hit{BlockID: c.blockID, Score: c.score, Text: block.Text, Source: source, Namespace: namespace}
	}

	return pool, nil
}

func applyFilters(candidates map[uint32]*candidate, blocks []packfmt.Block, freeTerms []string, requiredPhrases [][]string, quotedPhrases []tokenizer.Phrase, opts Options) map[uint32]*candidate {
	out := make(map[uint32]*candidate)
	for blockID, c := range candidates {
		block := blocks[blockID]

		if !labelMatches(namespaceOf(block), opts.Namespace) {
			continue
		}
		if !labelMatches(sourceOf(block), opts.Source) {
			continue
		}

		blockTokens := tokenizer.Terms(block.Text)

		if len(requiredPhrases) > 0 {
			ok := true
			for _, phrase := range requiredPhrases {
				if !containsContiguous(blockTokens, phrase) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			c.hasPhrase = true
		} else if len(quotedPhrases) > 0 {
			for _, p := range quotedPhrases {
				if containsContiguous(blockTokens, p.Terms) {
					c.hasPhrase = true
					break
				}
			}
		}

		c.headingScore = headingScore(freeTerms, block.Heading)
		out[blockID] = c
	}
	return out
}

func namespaceOf(b packfmt.Block) string {
	if b.Namespace == nil {
		return ""
	}
	return *b.Namespace
}

func sourceOf(b packfmt.Block) string {
	if b.DocID == nil {
		return ""
	}
	return *b.DocID
}

func averageBlockLen(pack *packfmt.Pack) float64 {
	if pack.Stats.AvgBlockLen > 0 {
		return pack.Stats.AvgBlockLen
	}
	if len(pack.Blocks) == 0 {
		return 1
	}
	var sum float64
	for _, b := range pack.Blocks {
		if b.Len > 0 {
			sum += float64(b.Len)
		} else {
			sum += float64(len(tokenizer.Tokenize(b.Text)))
		}
	}
	return sum / float64(len(pack.Blocks))
}

func sortedCandidates(m map[uint32]*candidate) []*candidate {
	out := make([]*candidate, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].blockID < out[j].blockID
	})
	return out
}

func applyKNSTieBreak(ranked []*candidate, queryText string, blocks []packfmt.Block) {
	qSig := signature.Of(tokenizer.Normalize(queryText))
	for _, c := range ranked {
		bSig := signature.Of(tokenizer.Normalize(blocks[c.blockID].Text))
		dist := signature.Distance(qSig, bSig)
		c.score *= 1 + knsStabilizer*(1-dist)
	}
}

func filterByMinScore(ranked []*candidate, minScore float64) []*candidate {
	out := make([]*candidate, 0, len(ranked))
	for _, c := range ranked {
		if c.score >= minScore {
			out = append(out, c)
		}
	}
	return out
}
