package retrieval

// candidate accumulates everything the scorer needs for one block that
// matched at least one query term.
type candidate struct {
	blockID      uint32
	tf           map[uint32]float64
	pos          map[uint32][]uint32
	hasPhrase    bool
	headingScore float64
	score        float64
}

func newCandidate(blockID uint32) *candidate {
	return &candidate{blockID: blockID, tf: make(map[uint32]float64), pos: make(map[uint32][]uint32)}
}

// walkPostings decodes the flat posting stream, invoking visit once per
// (term_id, block_id, positions) triple.
func walkPostings(postings []uint32, idOffset uint32, visit func(termID, blockID uint32, positions []uint32)) {
	i := 0
	for i < len(postings) {
		termID := postings[i]
		i++
		for i < len(postings) && postings[i] != 0 {
			blockID := postings[i] - idOffset
			i++
			start := i
			for i < len(postings) && postings[i] != 0 {
				i++
			}
			visit(termID, blockID, postings[start:i])
			i++ // consume block terminator
		}
		i++ // consume term terminator
	}
}

// scanResult is the outcome of one full pass over the posting stream.
type scanResult struct {
	candidates map[uint32]*candidate
	df         map[uint32]uint32
}

// scan walks the posting stream once, tracking document frequency for
// every scanned term and accumulating candidate data only for terms in
// relevantTermIDs.
func scan(postings []uint32, idOffset uint32, relevantTermIDs map[uint32]bool) scanResult {
	result := scanResult{candidates: make(map[uint32]*candidate), df: make(map[uint32]uint32)}

	walkPostings(postings, idOffset, func(termID, blockID uint32, positions []uint32) {
		result.df[termID]++
		if !relevantTermIDs[termID] {
			return
		}
		c, ok := result.candidates[blockID]
		if !ok {
			c = newCandidate(blockID)
			result.candidates[blockID] = c
		}
		c.tf[termID] = float64(len(positions))
		posCopy := make([]uint32, len(positions))
		copy(posCopy, positions)
		c.pos[termID] = posCopy
	})

	return result
}
