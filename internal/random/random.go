// Package random provides the default randomness source for node
// selection and read routing.
package random

import (
	"math/rand/v2"

	"github.com/giantninja/ninja-redis/types"
)

// source wraps math/rand/v2's shared generator.
type source struct{}

// Compile-time assertion that source implements types.Rand.
var _ types.Rand = source{}

// New creates the default randomness source.
//
// Routing-distribution tests substitute a deterministic types.Rand
// instead of using this one.
//
// Returns:
//   - types.Rand: The default source
func New() types.Rand {
	return source{}
}

// IntN returns a uniform random int in [0, n).
func (source) IntN(n int) int {
	return rand.IntN(n)
}

// Shuffle pseudo-randomizes the order of n elements via swap.
func (source) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}
