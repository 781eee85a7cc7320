package retrieval

import "math"

const (
	k1          = 1.5
	bParam      = 0.75
	proximityK  = 0.15
	phraseBoost = 0.6
	headingBoost = 0.3
)

// idf is the BM25 query-time inverse document frequency.
func idf(docCount, df uint32) float64 {
	return math.Log(1 + (float64(docCount)-float64(df)+0.5)/(float64(df)+0.5))
}

// bm25l scores one candidate against queryTermIDs (the base query
// terms, plus the expansion terms when expansion is applied).
func bm25l(c *candidate, queryTermIDs []uint32, df map[uint32]uint32, docCount uint32, lenB, avgLen float64) float64 {
	if avgLen == 0 {
		avgLen = 1
	}
	var score float64
	for _, termID := range queryTermIDs {
		tf := c.tf[termID]
		if tf == 0 {
			continue
		}
		d := df[termID]
		num := tf * (k1 + 1)
		den := tf + k1*(1-bParam+bParam*lenB/avgLen)
		score += idf(docCount, d) * (num / den)
	}
	return score
}

// minCoverSpan finds the minimum span containing at least one position
// from every list in pos, using the standard multi-pointer sliding
// window over sorted position lists. Returns (span, ok); ok is false
// when pos is empty.
func minCoverSpan(pos map[uint32][]uint32) (uint32, bool) {
	if len(pos) == 0 {
		return 0, false
	}

	type cursor struct {
		list []uint32
		idx  int
	}
	cursors := make([]*cursor, 0, len(pos))
	for _, list := range pos {
		if len(list) == 0 {
			return 0, false
		}
		cursors = append(cursors, &cursor{list: list})
	}

	best := uint32(math.MaxUint32)
	for {
		curMin, curMax := cursors[0].list[cursors[0].idx], cursors[0].list[cursors[0].idx]
		minOwner := 0
		for i, c := range cursors {
			v := c.list[c.idx]
			if v < curMin {
				curMin = v
				minOwner = i
			}
			if v > curMax {
				curMax = v
			}
		}
		if span := curMax - curMin; span < best {
			best = span
		}
		cursors[minOwner].idx++
		if cursors[minOwner].idx >= len(cursors[minOwner].list) {
			break
		}
	}
	return best, true
}

// proximityMultiplier converts a minimal cover span into the bounded
// BM25L proximity bonus described in the spec (<= 1.15).
func proximityMultiplier(span uint32, ok bool) float64 {
	if !ok {
		return 1
	}
	return 1 + proximityK/(1+float64(span))
}
