package knolo

import (
	"encoding/json"
	"log/slog"
	"math"

	kerrors "github.com/HiveForensics-AI/knolo-core/internal/errors"
	"github.com/HiveForensics-AI/knolo-core/internal/lexidx"
	"github.com/HiveForensics-AI/knolo-core/internal/obslog"
	"github.com/HiveForensics-AI/knolo-core/internal/packfmt"
	"github.com/HiveForensics-AI/knolo-core/internal/quantize"
	"github.com/HiveForensics-AI/knolo-core/internal/tokenizer"
)

// SemanticInput supplies pre-computed embeddings to BuildPack. One
// embedding must be provided per document, in the same order, each
// with the same dimensionality.
type SemanticInput struct {
	ModelID    string
	Embeddings [][]float32
}

type buildConfig struct {
	semantic *SemanticInput
	extra    json.RawMessage
	logger   *slog.Logger
}

// BuildOption configures BuildPack.
type BuildOption func(*buildConfig)

// WithLogger attaches a structured logger for the build step. Defaults
// to a silent logger; BuildPack never logs to stderr unless a caller
// opts in.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(c *buildConfig) {
		c.logger = logger
	}
}

// WithSemantic attaches a pre-computed embedding per document, enabling
// the pack's optional int8-quantized semantic section.
func WithSemantic(in SemanticInput) BuildOption {
	return func(c *buildConfig) {
		c.semantic = &in
	}
}

// WithOpaqueMetadata attaches caller-defined fields to the pack's
// metadata JSON (e.g. an embedded tool registry). The core never
// interprets this value; it is a bytewise pass-through.
func WithOpaqueMetadata(v any) BuildOption {
	return func(c *buildConfig) {
		b, err := json.Marshal(v)
		if err != nil {
			return
		}
		c.extra = b
	}
}

// BuildPack tokenizes docs, builds the lexicon and positional posting
// stream, optionally quantizes supplied embeddings, and serializes the
// result into a single pack byte sequence.
func BuildPack(docs []Document, opts ...BuildOption) ([]byte, error) {
	cfg := buildConfig{logger: obslog.Silent()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateDocs(docs); err != nil {
		cfg.logger.Error("build_pack rejected docs", "error", err)
		return nil, err
	}
	if cfg.semantic != nil {
		if err := validateEmbeddings(cfg.semantic.Embeddings, len(docs)); err != nil {
			cfg.logger.Error("build_pack rejected embeddings", "error", err)
			return nil, err
		}
	}

	lex := lexidx.NewLexicon()
	builder := lexidx.NewBuilder(lex)
	blocks := make([]packfmt.Block, len(docs))
	var totalLen uint32

	for i, d := range docs {
		tokens := tokenizer.Tokenize(d.Text)
		terms := make([]string, len(tokens))
		positions := make([]uint32, len(tokens))
		for j, tok := range tokens {
			terms[j] = tok.Term
			positions[j] = tok.Position
		}
		builder.AddBlock(uint32(i), terms, positions)

		b := packfmt.Block{Text: d.Text, Len: uint32(len(tokens))}
		if d.ID != "" {
			id := d.ID
			b.DocID = &id
		}
		if d.Heading != "" {
			h := d.Heading
			b.Heading = &h
		}
		if d.Namespace != "" {
			ns := d.Namespace
			b.Namespace = &ns
		}
		blocks[i] = b
		totalLen += b.Len
	}

	var avgLen float64
	if len(blocks) > 0 {
		avgLen = float64(totalLen) / float64(len(blocks))
	}

	input := packfmt.WriteInput{
		Stats: packfmt.Stats{
			Docs:        uint32(len(docs)),
			Blocks:      uint32(len(docs)),
			Terms:       uint32(lex.Len()),
			AvgBlockLen: avgLen,
		},
		Extra:        cfg.extra,
		LexiconPairs: lex.Pairs(),
		Postings:     builder.Stream(),
		Blocks:       blocks,
	}

	if cfg.semantic != nil {
		dims := len(cfg.semantic.Embeddings[0])
		vectors := make([][]int8, len(docs))
		scales := make([]uint16, len(docs))
		for i, e := range cfg.semantic.Embeddings {
			q := quantize.Quantize(e)
			vectors[i] = q.Values
			scales[i] = quantize.EncodeFloat16(q.Scale)
		}
		input.Semantic = &packfmt.SemanticInput{
			ModelID: cfg.semantic.ModelID,
			Dims:    dims,
			Vectors: vectors,
			Scales:  scales,
		}
	}

	out, err := packfmt.Write(input)
	if err != nil {
		cfg.logger.Error("build_pack failed to serialize", "error", err)
		return nil, err
	}
	cfg.logger.Info("build_pack complete", "docs", len(docs), "terms", lex.Len(), "bytes", len(out), "semantic", cfg.semantic != nil)
	return out, nil
}

func validateDocs(docs []Document) error {
	for i, d := range docs {
		if d.Text == "" {
			return kerrors.Invalidf("docs", "doc at index %d: text must be a non-empty string", i)
		}
	}
	return nil
}

func validateEmbeddings(embeddings [][]float32, n int) error {
	if len(embeddings) != n {
		return kerrors.Invalidf("semantic.embeddings", "expected %d embeddings (one per document), got %d", n, len(embeddings))
	}
	if n == 0 {
		return nil
	}
	dims := len(embeddings[0])
	for i, e := range embeddings {
		if e == nil {
			return kerrors.Invalidf("semantic.embeddings", "embeddings[%d]: missing", i)
		}
		if len(e) != dims {
			return kerrors.Invalidf("semantic.embeddings", "embeddings[%d]: expected dims %d, got %d", i, dims, len(e))
		}
		for _, v := range e {
			if isNonFinite(v) {
				return kerrors.Invalidf("semantic.embeddings", "embeddings[%d]: contains a non-finite value", i)
			}
		}
	}
	return nil
}

func isNonFinite(f float32) bool {
	v := float64(f)
	return math.IsNaN(v) || math.IsInf(v, 0)
}
