package retrieval

import (
	"sort"

	"github.com/HiveForensics-AI/knolo-core/internal/packfmt"
	"github.com/HiveForensics-AI/knolo-core/internal/quantize"
)

// LexicalConfidence is the confidence signal used to decide whether
// semantic rerank should engage: (score1-score2)/score1 over the top
// two ranked scores, 1 if there is only one, 0 if there are none.
func LexicalConfidence(scores []float64) float64 {
	switch len(scores) {
	case 0:
		return 0
	case 1:
		return 1
	default:
		if scores[0] == 0 {
			return 0
		}
		return (scores[0] - scores[1]) / scores[0]
	}
}

// blockVector decodes the quantized semantic vector and scale for
// blockID out of the pack's semantic blob.
func blockVector(sem *packfmt.Semantic, blockID uint32) quantize.Quantized {
	dims := sem.Meta.Dims
	vecOff := sem.Meta.Blocks.Vectors.ByteOffset + int(blockID)*dims
	values := make([]int8, dims)
	for i := 0; i < dims; i++ {
		values[i] = int8(sem.Blob[vecOff+i])
	}

	scaleOff := sem.Meta.Blocks.Scales.ByteOffset + int(blockID)*2
	scaleBits := uint16(sem.Blob[scaleOff]) | uint16(sem.Blob[scaleOff+1])<<8
	scale := quantize.DecodeFloat16(scaleBits)

	return quantize.Quantized{Values: values, Scale: scale}
}

// applySemanticRerank reorders ranked (best-scored first) by blending
// lexical and semantic scores over its top opts.TopN entries, following
// spec §4.6 Step 9.
func applySemanticRerank(ranked []*candidate, sem *packfmt.Semantic, queryEmbedding []float32, opts SemanticOptions) []*candidate {
	n := opts.TopN
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}
	if n == 0 {
		return ranked
	}

	subset := ranked[:n]
	remainder := ranked[n:]

	queryQuant := quantize.Quantize(queryEmbedding)
	semScores := make([]float64, n)
	lexScores := make([]float64, n)
	for i, c := range subset {
		semScores[i] = float64(quantize.CosineApprox(queryQuant, blockVector(sem, c.blockID)))
		lexScores[i] = c.score
	}

	var newScores []float64
	if opts.Blend.Enabled {
		lexNorm := minMaxNormalize(lexScores)
		semNorm := minMaxNormalize(semScores)
		newScores = make([]float64, n)
		for i := range newScores {
			newScores[i] = opts.Blend.WLex*lexNorm[i] + opts.Blend.WSem*semNorm[i]
		}
	} else {
		newScores = semScores
	}

	for i, c := range subset {
		c.score = newScores[i]
	}

	sort.SliceStable(subset, func(i, j int) bool {
		return subset[i].score > subset[j].score
	})

	return append(append([]*candidate{}, subset...), remainder...)
}

func minMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(values))
	if max == min {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, v := range values {
		out[i] = (v - min) / (max - min)
	}
	return out
}
