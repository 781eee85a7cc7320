// Package quantize implements int8 L2-norm quantization of float32
// embeddings for the semantic section of a pack, plus the float16 scale
// codec and the dot-product primitive used to approximate cosine
// similarity at rerank time without ever materializing float32 vectors.
package quantize

import "math"

// Quantized is the int8 representation of one embedding plus the scale
// needed to approximately recover its normalized float32 form.
type Quantized struct {
	Values []int8
	Scale  float32
}

// Quantize L2-normalizes v, derives a per-vector scale from the
// normalized vector's max absolute component, and rounds each scaled
// component to the nearest int8 (ties away from zero), clamped to
// [-127, 127]. A zero vector (zero L2 norm) quantizes to an all-zero
// int8 vector with scale 0, since there is no direction to preserve.
func Quantize(v []float32) Quantized {
	var sumSq float64
	for _, e := range v {
		sumSq += float64(e) * float64(e)
	}
	norm := math.Sqrt(sumSq)

	values := make([]int8, len(v))
	if norm == 0 {
		return Quantized{Values: values, Scale: 0}
	}

	normalized := make([]float64, len(v))
	var maxAbs float64
	for i, e := range v {
		n := float64(e) / norm
		normalized[i] = n
		if a := math.Abs(n); a > maxAbs {
			maxAbs = a
		}
	}

	scale := maxAbs / 127
	if scale == 0 {
		return Quantized{Values: values, Scale: 0}
	}

	for i, n := range normalized {
		values[i] = clampInt8(roundHalfAwayFromZero(n / scale))
	}
	return Quantized{Values: values, Scale: float32(scale)}
}

func roundHalfAwayFromZero(f float64) int {
	return int(math.Round(f))
}

func clampInt8(v int) int8 {
	switch {
	case v > 127:
		return 127
	case v < -127:
		return -127
	default:
		return int8(v)
	}
}

// Dot returns the raw int32 dot product of two equal-length int8
// vectors. Multiplying the result by both vectors' scales approximates
// the cosine similarity of the original normalized embeddings.
func Dot(a, b []int8) int32 {
	var sum int32
	for i := range a {
		sum += int32(a[i]) * int32(b[i])
	}
	return sum
}

// CosineApprox approximates the cosine similarity between the two
// embeddings that produced a and b by rescaling their int8 dot product.
func CosineApprox(a Quantized, b Quantized) float32 {
	return float32(Dot(a.Values, b.Values)) * a.Scale * b.Scale
}
