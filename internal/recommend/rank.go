// Package recommend ranks a stream's course profiles against a learner's
// trait scores.
package recommend

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/scoring"
)

// DefaultLimit is the maximum number of recommendations returned when
// Options.Limit is not set.
const DefaultLimit = 10

// explainTraits is how many contributing traits an explanation names.
const explainTraits = 2

// RankedCourse is one entry of a recommendation list.
type RankedCourse struct {
	Rank          int             `json:"rank"`
	CourseID      string          `json:"course_id"`
	Name          string          `json:"name"`
	MatchPercent  float64         `json:"match_percent"`
	Explanation   string          `json:"explanation"`
	MatchedTraits []catalog.Trait `json:"matched_traits,omitempty"`
	Careers       []string        `json:"careers,omitempty"`
	SalaryRange   string          `json:"salary_range,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// Options controls ranking.
type Options struct {
	Normalization Normalization
	// Limit caps the result length. Zero means DefaultLimit.
	Limit int
	// TraitOrder breaks ties between equally contributing traits.
	TraitOrder []catalog.Trait
	// Label renders a trait for explanations. Nil uses the trait id.
	Label func(catalog.Trait) string
}

// DefaultOptions returns cosine normalization with the default limit.
func DefaultOptions() Options {
	return Options{
		Normalization: NormalizationCosine,
		Limit:         DefaultLimit,
	}
}

// Rank scores every profile against the learner's trait vector, sorts by
// match percentage (descending) then course id, assigns 1-based ranks and
// truncates to the configured limit. It never returns nil.
func Rank(scores scoring.Scores, profiles []catalog.CourseProfile, opts Options) []RankedCourse {
	norm := opts.Normalization
	if norm == "" {
		norm = NormalizationCosine
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	label := opts.Label
	if label == nil {
		label = func(t catalog.Trait) string { return strings.ReplaceAll(string(t), "_", " ") }
	}

	ranked := make([]RankedCourse, 0, len(profiles))
	for _, p := range profiles {
		matched := contributors(scores, p.Weights, opts.TraitOrder)
		ranked = append(ranked, RankedCourse{
			CourseID:      p.ID,
			Name:          p.Name,
			MatchPercent:  round1(norm.percent(scores, p.Weights)),
			Explanation:   explain(matched, label),
			MatchedTraits: matched,
			Careers:       slices.Clone(p.Careers),
			SalaryRange:   p.SalaryRange,
			Description:   p.Description,
		})
	}

	slices.SortFunc(ranked, func(a, b RankedCourse) int {
		if c := cmp.Compare(b.MatchPercent, a.MatchPercent); c != 0 {
			return c
		}
		return strings.Compare(a.CourseID, b.CourseID)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// contributors returns the traits with the largest positive share of the
// dot product s·w.
func contributors(s scoring.Scores, w catalog.Weights, order []catalog.Trait) []catalog.Trait {
	contrib := make(scoring.Scores)
	for t, wt := range w {
		if v := s[t] * wt; v > 0 {
			contrib[t] = v
		}
	}
	if len(contrib) == 0 {
		return nil
	}
	return scoring.TopTraits(contrib, order, explainTraits)
}

func explain(traits []catalog.Trait, label func(catalog.Trait) string) string {
	switch len(traits) {
	case 0:
		return "No direct overlap with your strongest traits"
	case 1:
		return fmt.Sprintf("Builds on your %s strength", label(traits[0]))
	default:
		return fmt.Sprintf("Builds on your %s and %s strengths", label(traits[0]), label(traits[1]))
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
