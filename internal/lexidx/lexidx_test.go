package lexidx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicon_AssignsDenseIdsStartingAtOne(t *testing.T) {
	lex := NewLexicon()

	idAlpha := lex.IDFor("alpha")
	idBeta := lex.IDFor("beta")
	idAlphaAgain := lex.IDFor("alpha")

	assert.Equal(t, uint32(1), idAlpha)
	assert.Equal(t, uint32(2), idBeta)
	assert.Equal(t, idAlpha, idAlphaAgain)
	assert.Equal(t, 2, lex.Len())
}

func TestLexicon_TermRoundTrips(t *testing.T) {
	lex := NewLexicon()
	id := lex.IDFor("gamma")

	term, ok := lex.Term(id)
	require.True(t, ok)
	assert.Equal(t, "gamma", term)

	_, ok = lex.Term(0)
	assert.False(t, ok)

	_, ok = lex.Term(999)
	assert.False(t, ok)
}

func TestLexicon_PairsAreInAscendingTermIDOrder(t *testing.T) {
	lex := NewLexicon()
	lex.IDFor("zebra")
	lex.IDFor("apple")

	pairs := lex.Pairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, [2]any{"zebra", uint32(1)}, pairs[0])
	assert.Equal(t, [2]any{"apple", uint32(2)}, pairs[1])
}

func TestBuilder_StreamGrammar_SingleTermSingleBlock(t *testing.T) {
	lex := NewLexicon()
	b := NewBuilder(lex)

	b.AddBlock(0, []string{"alpha", "alpha"}, []uint32{0, 2})

	got := b.Stream()
	// term_id=1, block_entry: block_id+1=1, positions 0,2 emitted as position+1=1,3,
	// block terminator 0, term terminator 0.
	assert.Equal(t, []uint32{1, 1, 1, 3, 0, 0}, got)
}

func TestBuilder_StreamGrammar_TermAcrossMultipleBlocksInFirstSeenOrder(t *testing.T) {
	lex := NewLexicon()
	b := NewBuilder(lex)

	b.AddBlock(2, []string{"alpha"}, []uint32{0})
	b.AddBlock(0, []string{"alpha"}, []uint32{1})

	got := b.Stream()
	// block 2 was seen first, so its entry comes first despite the lower block id of 0.
	// Positions 0 and 1 are emitted as 1 and 2 (position+1 bias).
	assert.Equal(t, []uint32{1, 3, 1, 0, 1, 2, 0, 0}, got)
}

func TestBuilder_StreamGrammar_MultipleTermsInFirstSeenTermOrder(t *testing.T) {
	lex := NewLexicon()
	b := NewBuilder(lex)

	b.AddBlock(0, []string{"beta", "alpha"}, []uint32{0, 1})

	got := b.Stream()
	// "beta" first-seen before "alpha" -> term_id 1 then term_id 2; positions 0,1
	// emitted as 1,2.
	assert.Equal(t, []uint32{1, 1, 1, 0, 0, 2, 1, 2, 0, 0}, got)
}

func TestBuilder_EmptyBlockProducesNoPostingEntries(t *testing.T) {
	lex := NewLexicon()
	b := NewBuilder(lex)

	b.AddBlock(0, nil, nil)

	assert.Nil(t, b.Stream())
	assert.Equal(t, 0, lex.Len())
}

func TestBuilder_RepeatedTermInOneBlockYieldsSingleBlockEntry(t *testing.T) {
	lex := NewLexicon()
	b := NewBuilder(lex)

	b.AddBlock(0, []string{"alpha", "alpha", "alpha"}, []uint32{0, 1, 2})

	got := b.Stream()
	// positions 0,1,2 emitted as 1,2,3.
	assert.Equal(t, []uint32{1, 1, 1, 2, 3, 0, 0}, got)
}
