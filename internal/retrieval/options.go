package retrieval

import (
	kerrors "github.com/HiveForensics-AI/knolo-core/internal/errors"
)

// Options configures one query against a mounted pack.
type Options struct {
	TopK           int
	MinScore       *float64
	RequirePhrases []string
	Namespace      []string
	Source         []string
	Expansion      ExpansionOptions
	Semantic       SemanticOptions
}

// ExpansionOptions configures deterministic pseudo-relevance query
// expansion (spec §4.6 Step 7).
type ExpansionOptions struct {
	Enabled       bool
	Docs          int
	Terms         int
	Weight        float64
	MinTermLength int
}

// BlendOptions configures how lexical and semantic scores combine
// during rerank.
type BlendOptions struct {
	Enabled bool
	WLex    float64
	WSem    float64
}

// SemanticOptions configures the optional int8 semantic rerank layer.
type SemanticOptions struct {
	Enabled          bool
	Mode             string
	TopN             int
	MinLexConfidence float64
	Blend            BlendOptions
	QueryEmbedding   []float32
	Force            bool
}

// DefaultOptions returns an Options populated with every spec default.
func DefaultOptions() Options {
	return Options{
		TopK: 10,
		Expansion: ExpansionOptions{
			Enabled:       true,
			Docs:          3,
			Terms:         4,
			Weight:        0.35,
			MinTermLength: 3,
		},
		Semantic: SemanticOptions{
			Mode:             "rerank",
			TopN:             50,
			MinLexConfidence: 0.35,
			Blend: BlendOptions{
				Enabled: true,
				WLex:    0.75,
				WSem:    0.25,
			},
		},
	}
}

// Validate checks opts for shape errors that must be caught before any
// scan: negative numeric options, an out-of-range confidence threshold,
// and a semantic rerank request with no query embedding.
func Validate(opts Options) error {
	if opts.TopK < 0 {
		return kerrors.Invalid("topK", "must be non-negative")
	}
	if opts.Expansion.Docs < 0 {
		return kerrors.Invalid("expansion.docs", "must be non-negative")
	}
	if opts.Expansion.Terms < 0 {
		return kerrors.Invalid("expansion.terms", "must be non-negative")
	}
	if opts.Expansion.MinTermLength < 0 {
		return kerrors.Invalid("expansion.minTermLength", "must be non-negative")
	}
	if opts.Semantic.TopN < 0 {
		return kerrors.Invalid("semantic.topN", "must be non-negative")
	}
	if opts.Semantic.MinLexConfidence < 0 || opts.Semantic.MinLexConfidence > 1 {
		return kerrors.Invalid("semantic.minLexConfidence", "must be within [0,1]")
	}
	if opts.Semantic.Enabled && opts.Semantic.QueryEmbedding == nil {
		return kerrors.Invalid("semantic.queryEmbedding", "required when semantic rerank is enabled")
	}
	return nil
}
