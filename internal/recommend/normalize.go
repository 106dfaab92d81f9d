package recommend

import (
	"fmt"
	"math"
	"slices"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/scoring"
)

// Normalization selects how a raw dot product becomes a match percentage.
type Normalization string

const (
	// NormalizationCosine is 100·(s·w)/(|s|·|w|). It reaches 100 only when
	// the learner's vector points the same way as the course's.
	NormalizationCosine Normalization = "cosine"

	// NormalizationSelfDot is 100·(s·w)/(w·w), clamped to [0,100].
	NormalizationSelfDot Normalization = "self_dot"

	// NormalizationShare is 100·(p·w)/max(w) where p is the learner's score
	// vector scaled to sum to 1.
	NormalizationShare Normalization = "share"
)

// Normalizations lists the supported policies.
var Normalizations = []Normalization{NormalizationCosine, NormalizationSelfDot, NormalizationShare}

// ParseNormalization validates a policy name.
func ParseNormalization(s string) (Normalization, error) {
	n := Normalization(s)
	if !slices.Contains(Normalizations, n) {
		return "", fmt.Errorf("unknown normalization %q (want one of %v)", s, Normalizations)
	}
	return n, nil
}

// percent computes the match percentage of s against w, always in [0,100].
func (n Normalization) percent(s scoring.Scores, w catalog.Weights) float64 {
	traits := unionTraits(s, w)

	var dot, ss, ww, total, maxW float64
	for _, t := range traits {
		dot += s[t] * w[t]
		ss += s[t] * s[t]
		ww += w[t] * w[t]
		total += s[t]
		maxW = max(maxW, w[t])
	}
	if dot <= 0 {
		return 0
	}

	var v float64
	switch n {
	case NormalizationSelfDot:
		v = 100 * dot / ww
	case NormalizationShare:
		if total <= 0 || maxW <= 0 {
			return 0
		}
		v = 100 * (dot / total) / maxW
	default:
		v = 100 * dot / (math.Sqrt(ss) * math.Sqrt(ww))
	}
	return clamp(v, 0, 100)
}

// unionTraits returns the traits of both vectors in lexical order so sums
// are accumulated in a fixed sequence.
func unionTraits(s scoring.Scores, w catalog.Weights) []catalog.Trait {
	traits := make([]catalog.Trait, 0, len(s)+len(w))
	for t := range s {
		traits = append(traits, t)
	}
	for t := range w {
		if _, ok := s[t]; !ok {
			traits = append(traits, t)
		}
	}
	slices.Sort(traits)
	return traits
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
