package policy

import (
	"context"

	"github.com/giantninja/ninja-redis/internal/random"
	"github.com/giantninja/ninja-redis/types"
)

// ProbabilisticRead routes each read independently with an even split
// between primary and replica.
//
// Every call draws a fresh uniform integer in [1,100] and routes to the
// primary when the draw is at most 50. There is no sticky session
// affinity; over many calls the primary fraction converges to 0.5.
type ProbabilisticRead struct {
	rand types.Rand
}

// ProbabilisticReadOption configures a ProbabilisticRead strategy.
type ProbabilisticReadOption func(*ProbabilisticRead)

// WithRand sets the randomness source.
//
// Tests substitute a deterministic source to make the routing
// distribution verifiable.
//
// Parameters:
//   - r: The randomness source
//
// Returns:
//   - ProbabilisticReadOption: Configuration option
func WithRand(r types.Rand) ProbabilisticReadOption {
	return func(p *ProbabilisticRead) {
		p.rand = r
	}
}

// NewProbabilisticRead creates a new ProbabilisticRead strategy.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *ProbabilisticRead: A new probabilistic read strategy
func NewProbabilisticRead(opts ...ProbabilisticReadOption) *ProbabilisticRead {
	p := &ProbabilisticRead{
		rand: random.New(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Select draws the role for one read.
//
// Parameters:
//   - ctx: Context (unused but required by interface)
//
// Returns:
//   - types.Role: RolePrimary or RoleReplica, evenly split
func (p *ProbabilisticRead) Select(_ context.Context) types.Role {
	if p.rand.IntN(100)+1 <= 50 {
		return types.RolePrimary
	}

	return types.RoleReplica
}

// PrimaryOnlyRead routes every read to the primary.
//
// This is the strategy behind the master-only configuration flag; it
// trades read scaling for read-your-writes behavior.
type PrimaryOnlyRead struct{}

// NewPrimaryOnlyRead creates a new PrimaryOnlyRead strategy.
//
// Returns:
//   - *PrimaryOnlyRead: A new primary-only read strategy
func NewPrimaryOnlyRead() *PrimaryOnlyRead {
	return &PrimaryOnlyRead{}
}

// Select always returns the primary role.
//
// Parameters:
//   - ctx: Context (unused)
//
// Returns:
//   - types.Role: Always RolePrimary
func (p *PrimaryOnlyRead) Select(_ context.Context) types.Role {
	return types.RolePrimary
}
