package policy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/giantninja/ninja-redis/policy"
	"github.com/giantninja/ninja-redis/test/testutil"
	"github.com/giantninja/ninja-redis/types"
)

func TestProbabilisticRead_Boundaries(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		draw int
		want types.Role
	}{
		{name: "lowest draw routes to primary", draw: 0, want: types.RolePrimary},
		{name: "draw of 50 routes to primary", draw: 49, want: types.RolePrimary},
		{name: "draw of 51 routes to replica", draw: 50, want: types.RoleReplica},
		{name: "highest draw routes to replica", draw: 99, want: types.RoleReplica},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := policy.NewProbabilisticRead(
				policy.WithRand(testutil.NewSeqRand(tt.draw)),
			)
			require.Equal(t, tt.want, strategy.Select(ctx))
		})
	}
}

func TestProbabilisticRead_EvenSplit(t *testing.T) {
	ctx := context.Background()
	strategy := policy.NewProbabilisticRead(
		policy.WithRand(testutil.SeededRand(42)),
	)

	const n = 100000
	primary := 0
	for range n {
		if strategy.Select(ctx) == types.RolePrimary {
			primary++
		}
	}

	fraction := float64(primary) / float64(n)
	require.InDelta(t, 0.5, fraction, 0.01)
}

func TestProbabilisticRead_IndependentDraws(t *testing.T) {
	ctx := context.Background()
	strategy := policy.NewProbabilisticRead(
		policy.WithRand(testutil.NewSeqRand(10, 60, 10)),
	)

	require.Equal(t, types.RolePrimary, strategy.Select(ctx))
	require.Equal(t, types.RoleReplica, strategy.Select(ctx))
	require.Equal(t, types.RolePrimary, strategy.Select(ctx))
}

func TestPrimaryOnlyRead(t *testing.T) {
	ctx := context.Background()
	strategy := policy.NewPrimaryOnlyRead()

	for range 10 {
		require.Equal(t, types.RolePrimary, strategy.Select(ctx))
	}
}
