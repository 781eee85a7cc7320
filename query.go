package knolo

import (
	"github.com/HiveForensics-AI/knolo-core/internal/diversify"
	"github.com/HiveForensics-AI/knolo-core/internal/hit"
	"github.com/HiveForensics-AI/knolo-core/internal/retrieval"
)

// Hit is one ranked block returned from Query.
type Hit struct {
	BlockID   uint32
	Score     float64
	Text      string
	Source    string
	Namespace string
}

// QueryOption configures a single Query call.
type QueryOption func(*retrieval.Options)

// WithTopK sets the maximum number of hits returned after
// diversification (default 10).
func WithTopK(k int) QueryOption {
	return func(o *retrieval.Options) { o.TopK = k }
}

// WithMinScore drops hits whose pre-diversification score is below
// minScore.
func WithMinScore(minScore float64) QueryOption {
	return func(o *retrieval.Options) { o.MinScore = &minScore }
}

// WithRequirePhrases adds phrases (tokenized through the normal path)
// that must appear, in addition to any quoted phrases in the query
// text itself.
func WithRequirePhrases(phrases ...string) QueryOption {
	return func(o *retrieval.Options) { o.RequirePhrases = phrases }
}

// WithNamespace restricts results to blocks whose normalized namespace
// matches one of namespaces.
func WithNamespace(namespaces ...string) QueryOption {
	return func(o *retrieval.Options) { o.Namespace = namespaces }
}

// WithSource restricts results to blocks whose normalized doc_id
// matches one of sources.
func WithSource(sources ...string) QueryOption {
	return func(o *retrieval.Options) { o.Source = sources }
}

// WithExpansion overrides the deterministic pseudo-relevance query
// expansion layer, which is enabled with spec defaults otherwise.
func WithExpansion(enabled bool, docs, terms int, weight float64, minTermLength int) QueryOption {
	return func(o *retrieval.Options) {
		o.Expansion = retrieval.ExpansionOptions{
			Enabled:       enabled,
			Docs:          docs,
			Terms:         terms,
			Weight:        weight,
			MinTermLength: minTermLength,
		}
	}
}

// WithSemanticRerank enables the optional int8 semantic rerank layer.
// queryEmbedding is required; validation fails if it is nil. force
// bypasses the lexical-confidence gate. Score blending is configured
// separately with WithSemanticBlend.
func WithSemanticRerank(queryEmbedding []float32, force bool) QueryOption {
	return func(o *retrieval.Options) {
		o.Semantic.Enabled = true
		o.Semantic.QueryEmbedding = queryEmbedding
		o.Semantic.Force = force
	}
}

// WithSemanticBlend overrides the lexical/semantic score blend used
// during rerank (default enabled, w_lex=0.75, w_sem=0.25).
func WithSemanticBlend(enabled bool, wLex, wSem float64) QueryOption {
	return func(o *retrieval.Options) {
		o.Semantic.Blend = retrieval.BlendOptions{Enabled: enabled, WLex: wLex, WSem: wSem}
	}
}

// WithSemanticTopN overrides how many top-ranked candidates are
// eligible for semantic rerank (default 50).
func WithSemanticTopN(topN int) QueryOption {
	return func(o *retrieval.Options) { o.Semantic.TopN = topN }
}

// WithMinLexConfidence overrides the lexical-confidence threshold below
// which semantic rerank engages (default 0.35).
func WithMinLexConfidence(minConf float64) QueryOption {
	return func(o *retrieval.Options) { o.Semantic.MinLexConfidence = minConf }
}

func resolveOptions(opts []QueryOption) retrieval.Options {
	resolved := retrieval.DefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}
	return resolved
}

// ValidateQueryOptions checks opts for shape errors without running a
// query. Useful for validating caller input eagerly, before a pack is
// even available.
func ValidateQueryOptions(opts ...QueryOption) error {
	return retrieval.Validate(resolveOptions(opts))
}

// Query runs the full ranking pipeline against pack: candidate
// gathering, BM25L scoring, optional expansion, KNS tie-break, optional
// semantic rerank, and MMR diversification.
func Query(pack *Pack, queryText string, opts ...QueryOption) ([]Hit, error) {
	resolved := resolveOptions(opts)

	pool, err := retrieval.Query(pack.inner, queryText, resolved)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}

	diversified := diversify.Select(pool, resolved.TopK)
	return toPublicHits(diversified), nil
}

func toPublicHits(hits []hit.Hit) []Hit {
	if len(hits) == 0 {
		return nil
	}
	out := make([]Hit, len(hits))
	for i, h := range hits {
		out[i] = Hit{BlockID: h.BlockID, Score: h.Score, Text: h.Text, Source: h.Source, Namespace: h.Namespace}
	}
	return out
}

// LexConfidence reports the lexical confidence signal for an already
// ranked hit list: (score1-score2)/score1 over the top two, 1 if there
// is only one hit, 0 if there are none.
func LexConfidence(hits []Hit) float64 {
	scores := make([]float64, len(hits))
	for i, h := range hits {
		scores[i] = h.Score
	}
	return retrieval.LexicalConfidence(scores)
}
