package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/abhisek/pathwise/internal/catalog"
)

func poolOf(stream catalog.StreamID, n int) []catalog.Question {
	qs := make([]catalog.Question, n)
	for i := range qs {
		qs[i] = catalog.Question{ID: fmt.Sprintf("%s-q%02d", stream, i), Stream: stream}
	}
	return qs
}

func ids(qs []catalog.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestSelect_NeverReturnsSeen(t *testing.T) {
	pool := poolOf("pcm", 25)
	seen := map[string]bool{}
	for _, q := range pool[:5] {
		seen[q.ID] = true
	}

	for seed := range uint64(50) {
		s := NewSelector(rand.NewPCG(seed, 99))
		sel, err := s.Select(pool, seen, "pcm", 20)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if sel.WasReset {
			t.Fatalf("seed %d: unexpected reset", seed)
		}
		if len(sel.Questions) != 20 {
			t.Fatalf("seed %d: got %d questions, want 20", seed, len(sel.Questions))
		}
		unique := map[string]bool{}
		for _, q := range sel.Questions {
			if seen[q.ID] {
				t.Errorf("seed %d: returned seen question %s", seed, q.ID)
			}
			unique[q.ID] = true
		}
		if len(unique) != 20 {
			t.Errorf("seed %d: %d unique questions, want 20", seed, len(unique))
		}
	}
}

func TestSelect_FiltersByStream(t *testing.T) {
	pool := append(poolOf("pcm", 12), poolOf("commerce", 30)...)

	sel, err := NewSelector(rand.NewPCG(1, 2)).Select(pool, nil, "pcm", 10)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	for _, q := range sel.Questions {
		if q.Stream != "pcm" {
			t.Errorf("got question %s from stream %s", q.ID, q.Stream)
		}
	}
}

func TestSelect_ResetWhenExhausted(t *testing.T) {
	pool := poolOf("pcm", 25)
	seen := map[string]bool{}
	for _, q := range pool {
		seen[q.ID] = true
	}

	sel, err := NewSelector(rand.NewPCG(3, 4)).Select(pool, seen, "pcm", 20)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !sel.WasReset {
		t.Error("expected WasReset when every question was seen")
	}
	if len(sel.Questions) != 20 {
		t.Errorf("got %d questions, want 20", len(sel.Questions))
	}
}

func TestSelect_ResetWhenUnseenTooFew(t *testing.T) {
	pool := poolOf("pcm", 25)
	seen := map[string]bool{}
	for _, q := range pool[:10] {
		seen[q.ID] = true
	}

	sel, err := NewSelector(rand.NewPCG(5, 6)).Select(pool, seen, "pcm", 20)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !sel.WasReset {
		t.Error("expected WasReset with only 15 unseen questions")
	}
}

func TestSelect_InsufficientCatalog(t *testing.T) {
	pool := poolOf("pcm", 12)

	_, err := NewSelector(nil).Select(pool, nil, "pcm", 20)

	var ice *InsufficientCatalogError
	if !errors.As(err, &ice) {
		t.Fatalf("expected InsufficientCatalogError, got %v", err)
	}
	if ice.Available != 12 || ice.Required != 20 || ice.Stream != "pcm" {
		t.Errorf("error = %+v", ice)
	}
}

func TestSelect_DeterministicForSeed(t *testing.T) {
	pool := poolOf("pcm", 25)

	a, err := NewSelector(rand.NewPCG(42, 7)).Select(pool, nil, "pcm", 20)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSelector(rand.NewPCG(42, 7)).Select(pool, nil, "pcm", 20)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids(a.Questions), ids(b.Questions)) {
		t.Errorf("same seed gave different selections:\n%v\n%v", ids(a.Questions), ids(b.Questions))
	}

	c, err := NewSelector(rand.NewPCG(43, 7)).Select(pool, nil, "pcm", 20)
	if err != nil {
		t.Fatal(err)
	}
	if slices.Equal(ids(a.Questions), ids(c.Questions)) {
		t.Error("different seeds gave identical selections")
	}
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	pool := poolOf("pcm", 25)
	before := ids(pool)

	if _, err := NewSelector(rand.NewPCG(1, 1)).Select(pool, nil, "pcm", 20); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(before, ids(pool)) {
		t.Error("Select reordered the caller's slice")
	}
}

func TestSelect_CoversWholePool(t *testing.T) {
	pool := poolOf("pcm", 25)
	s := NewSelector(rand.NewPCG(8, 9))

	counts := map[string]int{}
	firsts := map[string]int{}
	for range 400 {
		sel, err := s.Select(pool, nil, "pcm", 5)
		if err != nil {
			t.Fatal(err)
		}
		for _, q := range sel.Questions {
			counts[q.ID]++
		}
		firsts[sel.Questions[0].ID]++
	}

	// Each question is expected 80 times; allow generous slack.
	for _, q := range pool {
		if c := counts[q.ID]; c < 30 || c > 150 {
			t.Errorf("question %s selected %d times, want about 80", q.ID, c)
		}
	}
	if len(firsts) < 15 {
		t.Errorf("only %d distinct questions appeared first, presentation order looks fixed", len(firsts))
	}
}
