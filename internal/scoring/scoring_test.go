package scoring

import (
	"fmt"
	"slices"
	"testing"

	"github.com/abhisek/pathwise/internal/catalog"
)

func question(id string, opts ...catalog.Option) catalog.Question {
	return catalog.Question{ID: id, Stream: "pcm", Scenario: "scenario " + id, Options: opts}
}

func opt(id string, w catalog.Weights) catalog.Option {
	return catalog.Option{ID: id, Text: id, Weights: w}
}

func TestScore_AccumulatesChosenOptions(t *testing.T) {
	qs := []catalog.Question{
		question("q1", opt("a", catalog.Weights{"analytical": 2}), opt("b", catalog.Weights{"creative": 1})),
		question("q2", opt("a", catalog.Weights{"analytical": 1, "leadership": 1}), opt("b", catalog.Weights{"creative": 3})),
		question("q3", opt("a", catalog.Weights{"social": 5}), opt("b", catalog.Weights{"creative": 1})),
	}
	answers := map[string]string{"q1": "a", "q2": "b"}

	got := Score(qs, answers)

	want := Scores{"analytical": 2, "creative": 3}
	if len(got) != len(want) {
		t.Fatalf("Score = %v, want %v", got, want)
	}
	for tr, v := range want {
		if got[tr] != v {
			t.Errorf("Score[%s] = %v, want %v", tr, got[tr], v)
		}
	}
}

func TestScore_IgnoresUnknownOptions(t *testing.T) {
	qs := []catalog.Question{question("q1", opt("a", catalog.Weights{"analytical": 2}), opt("b", catalog.Weights{"creative": 1}))}

	got := Score(qs, map[string]string{"q1": "zz", "ghost": "a"})
	if len(got) != 0 {
		t.Errorf("Score = %v, want empty", got)
	}
}

func TestScore_TwentyAnalyticalAnswers(t *testing.T) {
	var qs []catalog.Question
	answers := make(map[string]string)
	for i := range 20 {
		id := fmt.Sprintf("q%02d", i)
		qs = append(qs, question(id, opt("a", catalog.Weights{"analytical": 2}), opt("b", catalog.Weights{"creative": 2})))
		answers[id] = "a"
	}

	got := Score(qs, answers)
	if got["analytical"] != 40 || len(got) != 1 {
		t.Errorf("Score = %v, want {analytical: 40}", got)
	}

	top := TopTraits(got, []catalog.Trait{"creative", "analytical"}, 1)
	if len(top) != 1 || top[0] != "analytical" {
		t.Errorf("TopTraits = %v, want [analytical]", top)
	}
}

func TestScore_Deterministic(t *testing.T) {
	var qs []catalog.Question
	answers := make(map[string]string)
	for i := range 30 {
		id := fmt.Sprintf("q%02d", i)
		qs = append(qs, question(id,
			opt("a", catalog.Weights{"analytical": 0.1, "creative": 0.7, "social": 0.3}),
			opt("b", catalog.Weights{"leadership": 0.2})))
		answers[id] = "a"
	}

	first := Score(qs, answers)
	for range 50 {
		again := Score(qs, answers)
		for tr, v := range first {
			if again[tr] != v {
				t.Fatalf("Score not bit-identical for %s: %v vs %v", tr, again[tr], v)
			}
		}
	}
}

func TestTopTraits(t *testing.T) {
	order := []catalog.Trait{"analytical", "creative", "leadership", "social"}

	tests := []struct {
		name   string
		scores Scores
		k      int
		want   []catalog.Trait
	}{
		{
			name:   "descending score",
			scores: Scores{"creative": 5, "analytical": 2, "social": 9},
			k:      3,
			want:   []catalog.Trait{"social", "creative", "analytical"},
		},
		{
			name:   "ties follow canonical order",
			scores: Scores{"social": 4, "leadership": 4, "creative": 4},
			k:      2,
			want:   []catalog.Trait{"creative", "leadership"},
		},
		{
			name:   "unknown traits after known ones",
			scores: Scores{"zeal": 4, "artistry": 4, "social": 4},
			k:      0,
			want:   []catalog.Trait{"social", "artistry", "zeal"},
		},
		{
			name:   "k larger than scored traits",
			scores: Scores{"analytical": 1},
			k:      5,
			want:   []catalog.Trait{"analytical"},
		},
		{
			name:   "empty",
			scores: Scores{},
			k:      3,
			want:   []catalog.Trait{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopTraits(tt.scores, order, tt.k)
			if !slices.Equal(got, tt.want) {
				t.Errorf("TopTraits = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopTraits_StableAcrossCalls(t *testing.T) {
	scores := Scores{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1}
	order := []catalog.Trait{"e", "d", "c", "b", "a"}

	first := TopTraits(scores, order, 3)
	for range 20 {
		if got := TopTraits(scores, order, 3); !slices.Equal(got, first) {
			t.Fatalf("TopTraits = %v, want %v", got, first)
		}
	}
	if !slices.Equal(first, []catalog.Trait{"e", "d", "c"}) {
		t.Errorf("TopTraits = %v, want [e d c]", first)
	}
}

func TestScores_Total(t *testing.T) {
	if got := (Scores{"a": 1.5, "b": 2.5}).Total(); got != 4 {
		t.Errorf("Total = %v, want 4", got)
	}
}
