// Package types provides shared types and error definitions for the
// ninja-redis library.
//
// This is a leaf package with zero ninja-redis imports to prevent import
// cycles. All packages in ninja-redis can safely import this package.
//
// # Types
//
// Role identifies which connection role an operation needs:
//
//	const (
//	    RolePrimary   Role = "primary"
//	    RoleReplica   Role = "replica"
//	    RolePubSub    Role = "pubsub"
//	    RoleDiscovery Role = "discovery"
//	)
//
// Endpoint is a data-node address resolved through discovery, carrying the
// raw status flags the discovery service reported for it. Topology is the
// point-in-time primary/replica layout built from endpoints.
//
// # Errors
//
// Sentinel errors are provided for common failure scenarios:
//
//   - ErrNoDiscoveryNode: No configured discovery node accepted a connection
//   - ErrNoPrimary: The discovery tier could not supply a primary address
//   - ErrNoReplicaAvailable: The healthy replica set was empty after filtering
//   - ErrAuthFailed: The store rejected the configured credential
//   - ErrPartialTransaction: A batched command reported a falsy result
//   - ErrUnsupportedCommand: A pass-through command name was not recognized
//
// PartialTransactionError additionally carries the raw per-command results
// so a partially-applied batch is detectable even though it cannot be
// rolled back.
package types
