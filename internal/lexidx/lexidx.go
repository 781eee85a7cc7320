// Package lexidx builds the dense lexicon and flat positional posting
// stream from a sequence of tokenized blocks. It is a single-pass,
// in-memory builder: term ids are assigned in first-seen order, and the
// emitted stream groups entries by term then by block, exactly as
// consumed by the query engine's linear scan.
package lexidx

// Lexicon is the term ↔ term_id bijection, in ascending term_id order
// starting at 1 (term_id 0 is reserved as a delimiter sentinel and is
// never assigned to a real term).
type Lexicon struct {
	termIDs map[string]uint32
	terms   []string // terms[i] has term_id i+1
}

// NewLexicon returns an empty lexicon.
func NewLexicon() *Lexicon {
	return &Lexicon{termIDs: make(map[string]uint32)}
}

// IDFor returns the term_id for term, assigning the next dense id on
// first occurrence.
func (l *Lexicon) IDFor(term string) uint32 {
	if id, ok := l.termIDs[term]; ok {
		return id
	}
	id := uint32(len(l.terms)) + 1
	l.termIDs[term] = id
	l.terms = append(l.terms, term)
	return id
}

// Lookup returns the term_id for term without assigning one, and
// whether it exists.
func (l *Lexicon) Lookup(term string) (uint32, bool) {
	id, ok := l.termIDs[term]
	return id, ok
}

// Term returns the term for a given term_id, and whether it exists.
func (l *Lexicon) Term(id uint32) (string, bool) {
	if id == 0 || int(id) > len(l.terms) {
		return "", false
	}
	return l.terms[id-1], true
}

// Pairs returns the lexicon as an ordered (term, term_id) list, ready
// for JSON serialization as [[term, term_id], ...].
func (l *Lexicon) Pairs() [][2]any {
	pairs := make([][2]any, len(l.terms))
	for i, term := range l.terms {
		pairs[i] = [2]any{term, uint32(i + 1)}
	}
	return pairs
}

// Len returns the number of distinct terms assigned so far.
func (l *Lexicon) Len() int {
	return len(l.terms)
}

// termEntry tracks, for one term, the positions at which it occurred
// within each block, plus the order blocks were first seen in.
type termEntry struct {
	blockOrder []uint32            // block ids in first-seen order
	positions  map[uint32][]uint32 // block_id -> positions, in append order
}

// Builder accumulates postings across blocks and emits the flat
// posting stream described in the pack format.
type Builder struct {
	lex     *Lexicon
	entries map[uint32]*termEntry // term_id -> entry
	order   []uint32              // term_ids in first-seen order
}

// NewBuilder returns a posting-stream builder backed by lex. Passing a
// non-empty lex lets a caller pre-seed term ids (not used by the core
// build path, but kept available for composition).
func NewBuilder(lex *Lexicon) *Builder {
	return &Builder{lex: lex, entries: make(map[uint32]*termEntry)}
}

// Lexicon returns the lexicon this builder is writing term ids into.
func (b *Builder) Lexicon() *Lexicon {
	return b.lex
}

// AddBlock records one block's tokens (term, position pairs) against
// blockID. Positions must already be in ascending order per term, which
// holds automatically for tokens produced by the tokenizer package
// since positions increment monotonically within a block.
func (b *Builder) AddBlock(blockID uint32, terms []string, positions []uint32) {
	for i, term := range terms {
		termID := b.lex.IDFor(term)
		entry, ok := b.entries[termID]
		if !ok {
			entry = &termEntry{positions: make(map[uint32][]uint32)}
			b.entries[termID] = entry
			b.order = append(b.order, termID)
		}
		if _, seen := entry.positions[blockID]; !seen {
			entry.blockOrder = append(entry.blockOrder, blockID)
		}
		entry.positions[blockID] = append(entry.positions[blockID], positions[i])
	}
}

// Stream emits the flat u32 posting stream in term_id order (first-seen
// order of AddBlock calls), with block entries in the order each block
// was first seen for that term.
//
//	stream      := (term_entry)*
//	term_entry  := term_id block_entry+ 0
//	block_entry := (block_id+1) position+ 0
//
// Positions are emitted with the same +1 bias as block ids: position 0
// is a token's genuine first position within a block, but 0 is also the
// block/term terminator, so every emitted position is the real,
// 0-based token position plus one. Consumers never need to undo this —
// tf only counts entries and proximity only takes differences between
// positions, and a uniform +1 offset cancels out of every difference.
func (b *Builder) Stream() []uint32 {
	var out []uint32
	for _, termID := range b.order {
		entry := b.entries[termID]
		out = append(out, termID)
		for _, blockID := range entry.blockOrder {
			out = append(out, blockID+1)
			for _, pos := range entry.positions[blockID] {
				out = append(out, pos+1)
			}
			out = append(out, 0)
		}
		out = append(out, 0)
	}
	return out
}
