package session

import (
	crand "crypto/rand"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/abhisek/pathwise/internal/catalog"
)

// Selection is the outcome of picking questions for a new attempt.
type Selection struct {
	// Questions are in presentation order.
	Questions []catalog.Question
	// WasReset is true when the unseen pool was too small and the whole
	// stream was sampled again. The caller must clear the registry.
	WasReset bool
}

// Selector samples question sets. It is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector returns a Selector drawing from src. A nil src uses a ChaCha8
// generator seeded from crypto/rand.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = secureSource()
	}
	return &Selector{rng: rand.New(src)}
}

func secureSource() rand.Source {
	var seed [32]byte
	// crypto/rand.Read never returns an error.
	_, _ = crand.Read(seed[:])
	return rand.NewChaCha8(seed)
}

// Select picks n questions of stream that are not in seen, in random order.
// When fewer than n unseen questions remain it samples the full stream and
// reports a reset. A stream with fewer than n questions in total is an
// InsufficientCatalogError.
func (s *Selector) Select(questions []catalog.Question, seen map[string]bool, stream catalog.StreamID, n int) (Selection, error) {
	var all, unseen []catalog.Question
	for _, q := range questions {
		if q.Stream != stream {
			continue
		}
		all = append(all, q)
		if !seen[q.ID] {
			unseen = append(unseen, q)
		}
	}

	if len(all) < n {
		return Selection{}, &InsufficientCatalogError{Stream: stream, Available: len(all), Required: n}
	}

	if len(unseen) >= n {
		return Selection{Questions: s.sample(unseen, n)}, nil
	}
	return Selection{Questions: s.sample(all, n), WasReset: true}, nil
}

// sample draws n items without replacement with a partial Fisher-Yates
// shuffle. The drawn prefix is itself uniformly ordered.
func (s *Selector) sample(pool []catalog.Question, n int) []catalog.Question {
	pool = slices.Clone(pool)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range n {
		j := i + s.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}
