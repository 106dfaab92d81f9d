package catalog

import "slices"

// StreamID identifies a subject track (e.g. "pcm", "commerce").
type StreamID string

// Trait is a measurable learner disposition scoped to a stream.
type Trait string

// TraitDef declares a trait and its display label. The order in which a
// stream declares its traits is the canonical order used to break ties.
type TraitDef struct {
	ID    Trait  `json:"id" yaml:"id"`
	Label string `json:"label,omitempty" yaml:"label"`
}

// Stream is a subject-track partition of the catalog.
type Stream struct {
	ID     StreamID   `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Traits []TraitDef `json:"traits" yaml:"traits"`
}

// TraitOrder returns the stream's traits in canonical order.
func (s Stream) TraitOrder() []Trait {
	order := make([]Trait, len(s.Traits))
	for i, t := range s.Traits {
		order[i] = t.ID
	}
	return order
}

// Weights maps traits to positive contributions.
type Weights map[Trait]float64

// Clone returns an independent copy of w.
func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Option is one answer choice of a scenario question.
type Option struct {
	ID      string  `json:"id" yaml:"id"`
	Text    string  `json:"text" yaml:"text"`
	Weights Weights `json:"weights" yaml:"weights"`
}

// Clone returns a copy that shares no maps with o.
func (o Option) Clone() Option {
	o.Weights = o.Weights.Clone()
	return o
}

// Question is an immutable scenario question. Its ID is stable across
// re-imports because it is derived from the stream and scenario text when
// content authors leave it blank.
type Question struct {
	ID       string   `json:"id" yaml:"id"`
	Stream   StreamID `json:"stream" yaml:"-"`
	Scenario string   `json:"scenario" yaml:"scenario"`
	Options  []Option `json:"options" yaml:"options"`
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	if q.Options != nil {
		opts := make([]Option, len(q.Options))
		for i, o := range q.Options {
			opts[i] = o.Clone()
		}
		q.Options = opts
	}
	return q
}

// Option returns the option with the given id.
func (q Question) Option(id string) (Option, bool) {
	i := slices.IndexFunc(q.Options, func(o Option) bool { return o.ID == id })
	if i < 0 {
		return Option{}, false
	}
	return q.Options[i], true
}

// CourseProfile is a recommendable course or career track annotated with
// the trait weights it expects from a well-suited learner.
type CourseProfile struct {
	ID          string   `json:"id" yaml:"id"`
	Stream      StreamID `json:"stream" yaml:"-"`
	Name        string   `json:"name" yaml:"name"`
	Weights     Weights  `json:"expected_trait_weights" yaml:"weights"`
	Careers     []string `json:"careers,omitempty" yaml:"careers"`
	SalaryRange string   `json:"salary_range,omitempty" yaml:"salary_range"`
	Description string   `json:"description,omitempty" yaml:"description"`
}

// Clone returns a deep copy of p.
func (p CourseProfile) Clone() CourseProfile {
	p.Weights = p.Weights.Clone()
	p.Careers = slices.Clone(p.Careers)
	return p
}
