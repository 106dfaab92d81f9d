package catalog

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

// validateCatalog performs all content checks on the given catalog parts.
// Returns a combined error describing all problems found, or nil if valid.
func validateCatalog(version string, streams []Stream, questions []Question, courses []CourseProfile) error {
	var errs []string

	if !semver.IsValid(version) {
		errs = append(errs, fmt.Sprintf("catalog version %q is not a valid semantic version (want e.g. v1.2.0)", version))
	}

	// Streams and their trait enumerations.
	declared := make(map[StreamID]map[Trait]bool, len(streams))
	for _, s := range streams {
		if s.ID == "" {
			errs = append(errs, "stream with empty ID")
			continue
		}
		if _, dup := declared[s.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate stream ID: %q", s.ID))
			continue
		}
		traits := make(map[Trait]bool, len(s.Traits))
		for _, t := range s.Traits {
			if t.ID == "" {
				errs = append(errs, fmt.Sprintf("stream %q declares a trait with empty ID", s.ID))
				continue
			}
			if traits[t.ID] {
				errs = append(errs, fmt.Sprintf("stream %q declares trait %q twice", s.ID, t.ID))
			}
			traits[t.ID] = true
		}
		if len(traits) == 0 {
			errs = append(errs, fmt.Sprintf("stream %q declares no traits", s.ID))
		}
		declared[s.ID] = traits
	}

	// Questions and options.
	questionIDs := make(map[string]bool, len(questions))
	for _, q := range questions {
		prefix := fmt.Sprintf("question %q", q.ID)
		if questionIDs[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		questionIDs[q.ID] = true

		traits, ok := declared[q.Stream]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s references unknown stream %q", prefix, q.Stream))
			continue
		}
		if strings.TrimSpace(q.Scenario) == "" {
			errs = append(errs, fmt.Sprintf("%s has empty scenario text", prefix))
		}
		if len(q.Options) < 2 {
			errs = append(errs, fmt.Sprintf("%s needs at least 2 options, got %d", prefix, len(q.Options)))
		}

		optionIDs := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if o.ID == "" {
				errs = append(errs, fmt.Sprintf("%s has an option with empty ID", prefix))
				continue
			}
			if optionIDs[o.ID] {
				errs = append(errs, fmt.Sprintf("%s has duplicate option ID %q", prefix, o.ID))
			}
			optionIDs[o.ID] = true
			errs = append(errs, checkWeights(fmt.Sprintf("%s option %q", prefix, o.ID), o.Weights, traits)...)
		}
	}

	// Course profiles.
	courseIDs := make(map[StreamID]map[string]bool)
	for _, cp := range courses {
		prefix := fmt.Sprintf("course %q", cp.ID)
		if cp.ID == "" {
			errs = append(errs, fmt.Sprintf("course %q in stream %q has empty ID", cp.Name, cp.Stream))
			continue
		}
		traits, ok := declared[cp.Stream]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s references unknown stream %q", prefix, cp.Stream))
			continue
		}
		if courseIDs[cp.Stream] == nil {
			courseIDs[cp.Stream] = make(map[string]bool)
		}
		if courseIDs[cp.Stream][cp.ID] {
			errs = append(errs, fmt.Sprintf("duplicate course ID %q in stream %q", cp.ID, cp.Stream))
		}
		courseIDs[cp.Stream][cp.ID] = true
		if strings.TrimSpace(cp.Name) == "" {
			errs = append(errs, fmt.Sprintf("%s has empty name", prefix))
		}
		errs = append(errs, checkWeights(prefix+" expected weights", cp.Weights, traits)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// checkWeights verifies a weight vector is non-empty, strictly positive and
// only uses declared traits.
func checkWeights(prefix string, w Weights, declared map[Trait]bool) []string {
	if len(w) == 0 {
		return []string{prefix + " has no trait weights"}
	}

	traits := make([]Trait, 0, len(w))
	for t := range w {
		traits = append(traits, t)
	}
	slices.Sort(traits)

	var errs []string
	for _, t := range traits {
		if !declared[t] {
			errs = append(errs, fmt.Sprintf("%s uses undeclared trait %q", prefix, t))
		}
		if v := w[t]; !(v > 0) {
			errs = append(errs, fmt.Sprintf("%s: weight for %q must be > 0, got %v", prefix, t, v))
		}
	}
	return errs
}
