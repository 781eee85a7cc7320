// Package diversify implements MMR-based result diversification with
// near-duplicate suppression, using 5-character-shingle Jaccard
// similarity on normalized block text.
package diversify

import (
	"github.com/HiveForensics-AI/knolo-core/internal/hit"
	"github.com/HiveForensics-AI/knolo-core/internal/tokenizer"
)

const (
	lambda       = 0.8
	simThreshold = 0.92
	shingleSize  = 5
)

// Select runs MMR over pool (assumed already sorted by score descending
// is not required; Select sorts internally) and returns up to k hits,
// none of which is a near-duplicate (jaccard5 >= simThreshold) of any
// hit already selected.
func Select(pool []hit.Hit, k int) []hit.Hit {
	if k <= 0 || len(pool) == 0 {
		return nil
	}

	ordered := make([]hit.Hit, len(pool))
	copy(ordered, pool)
	sortByScoreDesc(ordered)

	shingles := make([]map[string]struct{}, len(ordered))
	for i, h := range ordered {
		shingles[i] = shingleSet(h.Text)
	}

	kept := make([]hit.Hit, 0, k)
	keptShingles := make([]map[string]struct{}, 0, k)
	used := make([]bool, len(ordered))

	for len(kept) < k {
		bestIdx := -1
		bestValue := 0.0
		bestIsDuplicate := true
		fallbackIdx := -1

		for i, h := range ordered {
			if used[i] {
				continue
			}
			if fallbackIdx == -1 {
				fallbackIdx = i
			}
			maxSim := maxSimilarity(shingles[i], keptShingles)
			isDup := maxSim >= simThreshold
			if isDup {
				continue
			}
			value := lambda*h.Score - (1-lambda)*maxSim
			if bestIsDuplicate || value > bestValue {
				bestIdx = i
				bestValue = value
				bestIsDuplicate = false
			}
		}

		if bestIdx == -1 {
			if fallbackIdx == -1 {
				break
			}
			bestIdx = fallbackIdx
		}

		used[bestIdx] = true
		if maxSimilarity(shingles[bestIdx], keptShingles) >= simThreshold {
			continue
		}
		kept = append(kept, ordered[bestIdx])
		keptShingles = append(keptShingles, shingles[bestIdx])
	}

	return kept
}

// Jaccard5 is the 5-character-shingle Jaccard similarity of a and b
// after normalization.
func Jaccard5(a, b string) float64 {
	return jaccard(shingleSet(a), shingleSet(b))
}

func maxSimilarity(s map[string]struct{}, kept []map[string]struct{}) float64 {
	max := 0.0
	for _, k := range kept {
		if sim := jaccard(s, k); sim > max {
			max = sim
		}
	}
	return max
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for s := range a {
		if _, ok := b[s]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func shingleSet(text string) map[string]struct{} {
	normalized := tokenizer.Normalize(text)
	runes := []rune(normalized)
	set := make(map[string]struct{})
	if len(runes) < shingleSize {
		if len(runes) > 0 {
			set[string(runes)] = struct{}{}
		}
		return set
	}
	for i := 0; i+shingleSize <= len(runes); i++ {
		set[string(runes[i:i+shingleSize])] = struct{}{}
	}
	return set
}

func sortByScoreDesc(hits []hit.Hit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Score > hits[j-1].Score; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}
