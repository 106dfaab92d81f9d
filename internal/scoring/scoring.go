// Package scoring turns a learner's answers into a raw trait-score vector.
package scoring

import (
	"slices"
	"strings"

	"github.com/abhisek/pathwise/internal/catalog"
)

// Scores is a learner's cumulative, unnormalized trait vector.
type Scores map[catalog.Trait]float64

// Clone returns an independent copy of s.
func (s Scores) Clone() Scores {
	out := make(Scores, len(s))
	for t, v := range s {
		out[t] = v
	}
	return out
}

// Total returns the sum of all trait scores.
func (s Scores) Total() float64 {
	var total float64
	for _, t := range sortedTraits(s) {
		total += s[t]
	}
	return total
}

// Score accumulates the weights of each chosen option. Questions are
// visited in the given order so repeated calls sum in the same sequence
// and produce bit-identical floats. Unanswered questions and unknown
// option ids contribute nothing.
func Score(questions []catalog.Question, answers map[string]string) Scores {
	scores := make(Scores)
	for _, q := range questions {
		optID, ok := answers[q.ID]
		if !ok {
			continue
		}
		opt, ok := q.Option(optID)
		if !ok {
			continue
		}
		for _, t := range sortedTraits(opt.Weights) {
			scores[t] += opt.Weights[t]
		}
	}
	return scores
}

// TopTraits returns up to k traits ordered by descending score. Equal scores
// are ordered by their position in order; traits missing from order sort
// after all known traits, lexically. A k of zero or less returns every
// scored trait.
func TopTraits(scores Scores, order []catalog.Trait, k int) []catalog.Trait {
	pos := make(map[catalog.Trait]int, len(order))
	for i, t := range order {
		pos[t] = i
	}

	traits := sortedTraits(scores)
	slices.SortStableFunc(traits, func(a, b catalog.Trait) int {
		if sa, sb := scores[a], scores[b]; sa != sb {
			if sa > sb {
				return -1
			}
			return 1
		}
		pa, oka := pos[a]
		pb, okb := pos[b]
		switch {
		case oka && okb:
			return pa - pb
		case oka:
			return -1
		case okb:
			return 1
		}
		return strings.Compare(string(a), string(b))
	})

	if k > 0 && k < len(traits) {
		traits = traits[:k]
	}
	return traits
}

func sortedTraits[V any](m map[catalog.Trait]V) []catalog.Trait {
	traits := make([]catalog.Trait, 0, len(m))
	for t := range m {
		traits = append(traits, t)
	}
	slices.Sort(traits)
	return traits
}
