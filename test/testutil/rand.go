package testutil

import (
	"math/rand/v2"
	"sync"

	"github.com/giantninja/ninja-redis/types"
)

// SeqRand is a scripted implementation of types.Rand.
//
// IntN returns the scripted draws in order, repeating the last one once
// the script is exhausted. Shuffle is the identity permutation so
// candidate order stays predictable in tests.
type SeqRand struct {
	mu    sync.Mutex
	draws []int
	pos   int
}

// Compile-time assertion that SeqRand implements types.Rand.
var _ types.Rand = (*SeqRand)(nil)

// NewSeqRand creates a scripted randomness source.
//
// Parameters:
//   - draws: Values returned by successive IntN calls
//
// Returns:
//   - *SeqRand: A deterministic randomness source
func NewSeqRand(draws ...int) *SeqRand {
	if len(draws) == 0 {
		draws = []int{0}
	}

	return &SeqRand{draws: draws}
}

// IntN returns the next scripted draw modulo n.
func (r *SeqRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.draws[r.pos]
	if r.pos < len(r.draws)-1 {
		r.pos++
	}

	return v % n
}

// Shuffle leaves the slice in its original order.
func (r *SeqRand) Shuffle(_ int, _ func(i, j int)) {}

// SeededRand returns a real randomness source with a fixed seed, for
// tests that assert statistical properties over many draws.
func SeededRand(seed uint64) types.Rand {
	return seededSource{r: rand.New(rand.NewPCG(seed, seed))}
}

type seededSource struct {
	r *rand.Rand
}

func (s seededSource) IntN(n int) int {
	return s.r.IntN(n)
}

func (s seededSource) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}
