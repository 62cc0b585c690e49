// Package topology resolves the primary/replica layout of a replication
// set through the discovery tier.
//
// The resolver is strictly on-demand: it runs exactly when the connection
// cache has no usable session for the requested role, never in the
// background. Replica records whose status flags carry a down-state
// marker are filtered out before the topology is handed back, so
// consumers only ever see endpoints the discovery tier considers healthy.
//
// An empty replica set after filtering is a reportable condition
// (types.ErrNoReplicaAvailable) distinct from a discovery connectivity
// failure (types.ErrNoDiscoveryNode); callers use the difference to
// decide between falling back to the primary and giving up.
package topology
