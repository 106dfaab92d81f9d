package catalog

import (
	"strings"
	"testing"
)

func testStreams() []Stream {
	return []Stream{{
		ID:     "pcm",
		Name:   "Science",
		Traits: []TraitDef{{ID: "analytical"}, {ID: "creative"}},
	}}
}

func testQuestion(id string) Question {
	return Question{
		ID:       id,
		Stream:   "pcm",
		Scenario: "Scenario " + id,
		Options: []Option{
			{ID: "a", Text: "A", Weights: Weights{"analytical": 2}},
			{ID: "b", Text: "B", Weights: Weights{"creative": 1}},
		},
	}
}

func TestValidate_DefaultContentPasses(t *testing.T) {
	if _, err := Default(); err != nil {
		t.Fatalf("embedded catalog validation failed: %v", err)
	}
}

func TestValidateCatalog(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		questions func() []Question
		courses   []CourseProfile
		wantErr   string
	}{
		{
			name:      "valid",
			version:   "v1.0.0",
			questions: func() []Question { return []Question{testQuestion("q1")} },
			courses:   []CourseProfile{{ID: "c1", Stream: "pcm", Name: "C", Weights: Weights{"analytical": 1}}},
		},
		{
			name:      "bad version",
			version:   "1.0",
			questions: func() []Question { return nil },
			wantErr:   "semantic version",
		},
		{
			name:    "duplicate question",
			version: "v1.0.0",
			questions: func() []Question {
				return []Question{testQuestion("q1"), testQuestion("q1")}
			},
			wantErr: "duplicate question ID",
		},
		{
			name:    "option without weights",
			version: "v1.0.0",
			questions: func() []Question {
				q := testQuestion("q1")
				q.Options[0].Weights = nil
				return []Question{q}
			},
			wantErr: "has no trait weights",
		},
		{
			name:    "negative weight",
			version: "v1.0.0",
			questions: func() []Question {
				q := testQuestion("q1")
				q.Options[1].Weights = Weights{"creative": -1}
				return []Question{q}
			},
			wantErr: "must be > 0",
		},
		{
			name:    "zero weight",
			version: "v1.0.0",
			questions: func() []Question {
				q := testQuestion("q1")
				q.Options[1].Weights = Weights{"creative": 0}
				return []Question{q}
			},
			wantErr: "must be > 0",
		},
		{
			name:    "undeclared trait",
			version: "v1.0.0",
			questions: func() []Question {
				q := testQuestion("q1")
				q.Options[0].Weights = Weights{"telepathy": 1}
				return []Question{q}
			},
			wantErr: `undeclared trait "telepathy"`,
		},
		{
			name:    "duplicate option",
			version: "v1.0.0",
			questions: func() []Question {
				q := testQuestion("q1")
				q.Options[1].ID = "a"
				return []Question{q}
			},
			wantErr: "duplicate option ID",
		},
		{
			name:    "single option",
			version: "v1.0.0",
			questions: func() []Question {
				q := testQuestion("q1")
				q.Options = q.Options[:1]
				return []Question{q}
			},
			wantErr: "at least 2 options",
		},
		{
			name:    "unknown stream",
			version: "v1.0.0",
			questions: func() []Question {
				q := testQuestion("q1")
				q.Stream = "arts"
				return []Question{q}
			},
			wantErr: `unknown stream "arts"`,
		},
		{
			name:      "course with empty weights",
			version:   "v1.0.0",
			questions: func() []Question { return nil },
			courses:   []CourseProfile{{ID: "c1", Stream: "pcm", Name: "C"}},
			wantErr:   "expected weights has no trait weights",
		},
		{
			name:      "course in unknown stream",
			version:   "v1.0.0",
			questions: func() []Question { return nil },
			courses:   []CourseProfile{{ID: "c1", Stream: "arts", Name: "C", Weights: Weights{"analytical": 1}}},
			wantErr:   "unknown stream",
		},
		{
			name:      "duplicate course",
			version:   "v1.0.0",
			questions: func() []Question { return nil },
			courses: []CourseProfile{
				{ID: "c1", Stream: "pcm", Name: "C", Weights: Weights{"analytical": 1}},
				{ID: "c1", Stream: "pcm", Name: "D", Weights: Weights{"creative": 1}},
			},
			wantErr: "duplicate course ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCatalog(tt.version, testStreams(), tt.questions(), tt.courses)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateCatalog_ReportsAllProblems(t *testing.T) {
	q := testQuestion("q1")
	q.Options[0].Weights = nil
	q.Options[1].Weights = Weights{"telepathy": 1}

	err := validateCatalog("bogus", testStreams(), []Question{q}, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"semantic version", "no trait weights", "telepathy"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got: %v", want, err)
		}
	}
}

func TestValidateCatalog_StreamDeclarations(t *testing.T) {
	streams := []Stream{
		{ID: "pcm", Name: "A", Traits: []TraitDef{{ID: "x"}, {ID: "x"}}},
		{ID: "pcm", Name: "B", Traits: []TraitDef{{ID: "y"}}},
		{ID: "arts", Name: "C"},
	}
	err := validateCatalog("v1.0.0", streams, nil, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"declares trait \"x\" twice", "duplicate stream ID", "declares no traits"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got: %v", want, err)
		}
	}
}
