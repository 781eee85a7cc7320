package knolo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMountQuery_S1_PhraseConstrainedSingleHit(t *testing.T) {
	docs := []Document{
		{ID: "a", Text: "React native bridge event throttling improves performance."},
		{ID: "b", Text: "Totally unrelated sentence."},
	}

	data, err := BuildPack(docs)
	require.NoError(t, err)

	pack, err := MountPack(data)
	require.NoError(t, err)

	hits, err := Query(pack, `"react native bridge" throttling`, WithTopK(3))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Source)
}

func TestBuildMountQuery_S3_DuplicateDocsCollapseToOneSource(t *testing.T) {
	docs := []Document{
		{ID: "d1", Text: "Throttle limits event rate across the bridge for better responsiveness."},
		{ID: "d2", Text: "Throttle limits event rate across the bridge for better responsiveness."},
		{ID: "d3", Text: "Debounce waits for silence while throttle enforces a maximum rate."},
	}

	data, err := BuildPack(docs)
	require.NoError(t, err)
	pack, err := MountPack(data)
	require.NoError(t, err)

	hits, err := Query(pack, "throttle bridge maximum rate", WithTopK(3))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(hits), 2)

	seen := make(map[string]bool)
	for _, h := range hits {
		assert.False(t, seen[h.Source], "duplicate source %s in diversified result", h.Source)
		seen[h.Source] = true
	}
}

func TestBuildMountQuery_S4_NamespaceFilter(t *testing.T) {
	docs := []Document{
		{ID: "m1", Namespace: "mobile", Text: "Bridge events use throttle controls."},
		{ID: "b1", Namespace: "backend", Text: "API gateways also throttle traffic bursts."},
	}

	data, err := BuildPack(docs)
	require.NoError(t, err)
	pack, err := MountPack(data)
	require.NoError(t, err)

	hits, err := Query(pack, "throttle", WithNamespace("mobile"))
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Equal(t, "mobile", h.Namespace)
	}
}

func TestBuildMountQuery_S5_ExpansionPullsInRelatedDoc(t *testing.T) {
	docs := []Document{
		{ID: "seed", Text: "Throttling controls event bursts and smooths bridge pressure."},
		{ID: "related", Text: "Rate limiting caps request bursts and protects systems under load."},
		{ID: "offtopic", Text: "Image caching accelerates rendering and reduces repeated network fetches."},
	}

	data, err := BuildPack(docs)
	require.NoError(t, err)
	pack, err := MountPack(data)
	require.NoError(t, err)

	withExpansion, err := Query(pack, "throttling bridge pressure", WithTopK(3))
	require.NoError(t, err)

	withoutExpansion, err := Query(pack, "throttling bridge pressure", WithTopK(3),
		WithExpansion(false, 0, 0, 0, 0))
	require.NoError(t, err)

	hasRelated := func(hits []Hit) bool {
		for _, h := range hits {
			if h.Source == "related" {
				return true
			}
		}
		return false
	}

	assert.True(t, hasRelated(withExpansion))
	assert.False(t, hasRelated(withoutExpansion))
}

func TestBuildMountQuery_S6_SemanticRerankReversesLexicalTop(t *testing.T) {
	docs := []Document{
		{ID: "weak", Text: "alpha beta appears rarely in passing"},
		{ID: "strong", Text: "alpha beta alpha beta alpha beta dominant phrase repeated"},
	}
	embeddings := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
	}

	data, err := BuildPack(docs, WithSemantic(SemanticInput{ModelID: "test", Embeddings: embeddings}))
	require.NoError(t, err)
	pack, err := MountPack(data)
	require.NoError(t, err)
	require.True(t, HasSemantic(pack))

	lexOnly, err := Query(pack, `"alpha beta"`, WithTopK(2), WithExpansion(false, 0, 0, 0, 0))
	require.NoError(t, err)
	require.NotEmpty(t, lexOnly)
	assert.Equal(t, "strong", lexOnly[0].Source)

	reranked, err := Query(pack, `"alpha beta"`, WithTopK(2), WithExpansion(false, 0, 0, 0, 0),
		WithSemanticRerank([]float32{1, 0, 0, 0}, true), WithSemanticBlend(false, 0, 0))
	require.NoError(t, err)
	require.NotEmpty(t, reranked)
	assert.Equal(t, "weak", reranked[0].Source)
}

func TestBuildPack_RejectsEmptyDocText(t *testing.T) {
	_, err := BuildPack([]Document{{ID: "a", Text: ""}})
	require.Error(t, err)
}

func TestBuildPack_RejectsMismatchedEmbeddingDims(t *testing.T) {
	docs := []Document{{ID: "a", Text: "hello world"}, {ID: "b", Text: "second document"}}
	_, err := BuildPack(docs, WithSemantic(SemanticInput{ModelID: "m", Embeddings: [][]float32{{1, 2, 3}, {1, 2}}}))
	require.Error(t, err)
}

func TestValidateQueryOptions_RejectsNegativeTopK(t *testing.T) {
	err := ValidateQueryOptions(WithTopK(-1))
	require.Error(t, err)
}

func TestValidateQueryOptions_RejectsSemanticEnabledWithoutEmbedding(t *testing.T) {
	err := ValidateQueryOptions(WithSemanticRerank(nil, true))
	require.Error(t, err)

	err = ValidateQueryOptions()
	require.NoError(t, err)
}

func TestMakeContextPatch_RespectsBudgetAndCarriesSource(t *testing.T) {
	hits := []Hit{
		{Text: "First sentence here. More detail follows.", Source: "a"},
		{Text: "Second hit content.", Source: "b"},
	}
	patch := MakeContextPatch(hits, BudgetMini)
	require.Len(t, patch.Snippets, 2)
	assert.Equal(t, "a", patch.Snippets[0].Source)
	assert.Equal(t, []string{}, patch.Definitions)
}

func TestLexConfidence_EmptyHitsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, LexConfidence(nil))
}

func TestMountPack_RejectsUnsupportedSourceType(t *testing.T) {
	_, err := MountPack(42)
	require.Error(t, err)
}
