package catalog

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

// Catalog holds the read-only question bank and course profiles with
// precomputed per-stream indices.
type Catalog struct {
	version      string
	streams      []Stream
	streamByID   map[StreamID]*Stream
	questions    map[StreamID][]Question
	questionByID map[string]Question
	courses      map[StreamID][]CourseProfile
	labels       map[StreamID]map[Trait]string
}

// New validates the given content and builds a Catalog from it.
// Questions without an ID get a content-derived one.
func New(version string, streams []Stream, questions []Question, courses []CourseProfile) (*Catalog, error) {
	questions = slices.Clone(questions)
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = QuestionID(questions[i].Stream, questions[i].Scenario)
		}
	}

	if err := validateCatalog(version, streams, questions, courses); err != nil {
		return nil, err
	}

	c := &Catalog{
		version:      semver.Canonical(version),
		streams:      slices.Clone(streams),
		streamByID:   make(map[StreamID]*Stream, len(streams)),
		questions:    make(map[StreamID][]Question),
		questionByID: make(map[string]Question, len(questions)),
		courses:      make(map[StreamID][]CourseProfile),
		labels:       make(map[StreamID]map[Trait]string, len(streams)),
	}

	for i := range c.streams {
		s := &c.streams[i]
		c.streamByID[s.ID] = s
		labels := make(map[Trait]string, len(s.Traits))
		for _, t := range s.Traits {
			labels[t.ID] = t.Label
		}
		c.labels[s.ID] = labels
	}

	for _, q := range questions {
		c.questions[q.Stream] = append(c.questions[q.Stream], q)
		c.questionByID[q.ID] = q
	}

	// Courses are kept sorted by ID so ranking input is stable regardless
	// of file order.
	for _, cp := range courses {
		c.courses[cp.Stream] = append(c.courses[cp.Stream], cp)
	}
	for stream := range c.courses {
		slices.SortFunc(c.courses[stream], func(a, b CourseProfile) int {
			return strings.Compare(a.ID, b.ID)
		})
	}

	return c, nil
}

// Version returns the canonical semantic version of the loaded content.
func (c *Catalog) Version() string {
	return c.version
}

// CompatibleWith reports whether content tagged with version shares this
// catalog's major version.
func (c *Catalog) CompatibleWith(version string) bool {
	if !semver.IsValid(version) {
		return false
	}
	return semver.Major(version) == semver.Major(c.version)
}

// Streams returns all streams in declaration order.
func (c *Catalog) Streams() []Stream {
	return slices.Clone(c.streams)
}

// Stream returns the stream with the given id.
func (c *Catalog) Stream(id StreamID) (Stream, bool) {
	s, ok := c.streamByID[id]
	if !ok {
		return Stream{}, false
	}
	return *s, true
}

// Questions returns every question of a stream in content order.
func (c *Catalog) Questions(stream StreamID) []Question {
	return cloneAll(c.questions[stream], Question.Clone)
}

// Question returns a question by ID, or error if not found.
func (c *Catalog) Question(id string) (Question, error) {
	q, ok := c.questionByID[id]
	if !ok {
		return Question{}, fmt.Errorf("question not found: %q", id)
	}
	return q.Clone(), nil
}

// CourseProfiles returns a stream's course profiles ordered by ID.
func (c *Catalog) CourseProfiles(stream StreamID) []CourseProfile {
	return cloneAll(c.courses[stream], CourseProfile.Clone)
}

func cloneAll[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}

// TraitOrder returns the canonical trait order of a stream.
func (c *Catalog) TraitOrder(stream StreamID) []Trait {
	s, ok := c.streamByID[stream]
	if !ok {
		return nil
	}
	return s.TraitOrder()
}

// TraitLabel returns the display label of a trait, falling back to the
// trait id with underscores replaced by spaces.
func (c *Catalog) TraitLabel(stream StreamID, t Trait) string {
	if l := c.labels[stream][t]; l != "" {
		return l
	}
	return strings.ReplaceAll(string(t), "_", " ")
}
