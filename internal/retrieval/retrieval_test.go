package retrieval

import (
	"testing"

	"github.com/HiveForensics-AI/knolo-core/internal/lexidx"
	"github.com/HiveForensics-AI/knolo-core/internal/packfmt"
	"github.com/HiveForensics-AI/knolo-core/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	id        string
	text      string
	heading   string
	namespace string
}

func buildTestPack(t *testing.T, docs []doc) *packfmt.Pack {
	t.Helper()

	lex := lexidx.NewLexicon()
	builder := lexidx.NewBuilder(lex)
	blocks := make([]packfmt.Block, len(docs))
	var totalLen uint32

	for i, d := range docs {
		tokens := tokenizer.Tokenize(d.text)
		terms := make([]string, len(tokens))
		positions := make([]uint32, len(tokens))
		for j, tok := range tokens {
			terms[j] = tok.Term
			positions[j] = tok.Position
		}
		builder.AddBlock(uint32(i), terms, positions)

		b := packfmt.Block{Text: d.text, Len: uint32(len(tokens))}
		if d.id != "" {
			id := d.id
			b.DocID = &id
		}
		if d.heading != "" {
			h := d.heading
			b.Heading = &h
		}
		if d.namespace != "" {
			ns := d.namespace
			b.Namespace = &ns
		}
		blocks[i] = b
		totalLen += b.Len
	}

	avg := float64(0)
	if len(blocks) > 0 {
		avg = float64(totalLen) / float64(len(blocks))
	}

	buf, err := packfmt.Write(packfmt.WriteInput{
		Stats:        packfmt.Stats{Docs: uint32(len(docs)), Blocks: uint32(len(docs)), Terms: uint32(lex.Len()), AvgBlockLen: avg},
		LexiconPairs: lex.Pairs(),
		Postings:     builder.Stream(),
		Blocks:       blocks,
	})
	require.NoError(t, err)

	pack, err := packfmt.Load(buf)
	require.NoError(t, err)
	return pack
}

func TestQuery_S1_PhraseConstrainedSingleHit(t *testing.T) {
	pack := buildTestPack(t, []doc{
		{id: "a", text: "React native bridge event throttling improves performance."},
		{id: "b", text: "Totally unrelated sentence."},
	})

	opts := DefaultOptions()
	opts.TopK = 3
	opts.Expansion.Enabled = false

	hits, err := Query(pack, `"react native bridge" throttling`, opts)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Source)
}

func TestQuery_S2_FirstBlockRetrievableByTerm(t *testing.T) {
	pack := buildTestPack(t, []doc{
		{id: "first", text: "alpha beta gamma only appears here"},
		{id: "second", text: "unrelated content"},
	})

	opts := DefaultOptions()
	opts.TopK = 2
	opts.Expansion.Enabled = false

	hits, err := Query(pack, "alpha", opts)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	found := false
	for _, h := range hits {
		if h.Source == "first" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestQuery_S4_NamespaceFilterAppliesToEveryHit(t *testing.T) {
	pack := buildTestPack(t, []doc{
		{id: "m1", namespace: "mobile", text: "Bridge events use throttle controls."},
		{id: "b1", namespace: "backend", text: "API gateways also throttle traffic bursts."},
	})

	opts := DefaultOptions()
	opts.Namespace = []string{"mobile"}
	opts.Expansion.Enabled = false

	hits, err := Query(pack, "throttle", opts)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Equal(t, "mobile", h.Namespace)
	}
}

func TestQuery_EmptyCandidateSetIsNotAnError(t *testing.T) {
	pack := buildTestPack(t, []doc{{id: "a", text: "alpha beta gamma"}})

	opts := DefaultOptions()
	hits, err := Query(pack, "zzz_not_present", opts)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestQuery_UnknownOptionShapeIsValidationError(t *testing.T) {
	pack := buildTestPack(t, []doc{{id: "a", text: "alpha"}})

	opts := DefaultOptions()
	opts.TopK = -1

	_, err := Query(pack, "alpha", opts)
	require.Error(t, err)
}

func TestQuery_RequiredPhraseNotContiguousExcludesHit(t *testing.T) {
	pack := buildTestPack(t, []doc{
		{id: "a", text: "the bridge event and the throttle control are separate"},
		{id: "b", text: "react native bridge event throttling"},
	})

	opts := DefaultOptions()
	opts.Expansion.Enabled = false
	hits, err := Query(pack, `"bridge event throttle"`, opts)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestQuery_ScoresAreMonotoneNonIncreasingWithoutExpansionOrSemantic(t *testing.T) {
	pack := buildTestPack(t, []doc{
		{id: "d1", text: "throttle limits event rate across the bridge for better responsiveness"},
		{id: "d2", text: "throttle limits event rate across the bridge for better responsiveness"},
		{id: "d3", text: "debounce waits for silence while throttle enforces a maximum rate"},
	})

	opts := DefaultOptions()
	opts.Expansion.Enabled = false
	hits, err := Query(pack, "throttle bridge maximum rate", opts)
	require.NoError(t, err)
	require.True(t, len(hits) >= 2)

	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i].Score, hits[i-1].Score)
	}
}

func TestMinCoverSpan_FindsMinimalSpanAcrossTermLists(t *testing.T) {
	pos := map[uint32][]uint32{
		1: {0, 10},
		2: {1, 11},
	}
	span, ok := minCoverSpan(pos)
	require.True(t, ok)
	assert.Equal(t, uint32(1), span)
}

func TestLexicalConfidence_Cases(t *testing.T) {
	assert.Equal(t, 0.0, LexicalConfidence(nil))
	assert.Equal(t, 1.0, LexicalConfidence([]float64{5}))
	assert.InDelta(t, 0.5, LexicalConfidence([]float64{10, 5}), 1e-9)
}
