package ninjaredis

import (
	"context"

	"github.com/giantninja/ninja-redis/types"
)

// ReadStrategy decides which connection role serves a read.
//
// The strategy is consulted on every read with no force-primary override;
// writes and explicitly forced reads always target the primary.
//
// Implementations live in the policy package: ProbabilisticRead (even
// 50/50 split, re-drawn per call) and PrimaryOnlyRead.
type ReadStrategy interface {
	// Select chooses the role for one read.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//
	// Returns:
	//   - types.Role: RolePrimary or RoleReplica
	Select(ctx context.Context) types.Role
}
