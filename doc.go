// Package ninjaredis provides a client-side resilience layer for a
// replicated Redis deployment monitored by sentinel discovery nodes.
//
// The library discovers topology through the sentinel tier, caches live
// authenticated connections per role (primary, replica, pub/sub), routes
// reads according to a configurable policy and executes short write
// sequences as atomic batches with all-or-nothing visibility into
// partial failure.
//
// # Key Features
//
//   - Sentinel Discovery: topology resolved on demand through a pool of
//     discovery nodes with sticky last-success selection
//   - Connection Caching: sessions are established lazily, reused while
//     healthy and rebuilt (never repaired) on failure
//   - Policy Read Routing: an even probabilistic primary/replica split,
//     or primary-only when replica staleness is unacceptable
//   - Atomic Batches: write+expire and push+expire+trim run as one
//     transaction whose per-command results are all verified
//
// # Basic Usage
//
//	client, err := ninjaredis.New(ninjaredis.Config{
//	    DiscoveryNodes: []discovery.NodeConfig{
//	        {Host: "10.0.0.1", Port: 26379},
//	        {Host: "10.0.0.2", Port: 26379},
//	    },
//	    MasterName:     "mymaster",
//	    KeyPrefix:      "myapp:",
//	    ConnectTimeout: 2 * time.Second,
//	    ReadTimeout:    1 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Set(ctx, "greeting", "hello", 10*time.Minute)
//	val, err := client.Get(ctx, "greeting")
//
// # Error Handling
//
// Operations return standard Go errors. Sentinel errors in the types
// package identify the failure class: types.ErrNoDiscoveryNode,
// types.ErrNoReplicaAvailable, types.ErrAuthFailed,
// types.ErrPartialTransaction and types.ErrUnsupportedCommand. Retries
// are limited to iterating the remaining untried candidates within one
// logical operation; a failed call returns immediately and the caller
// decides whether to retry.
//
// # Consistency
//
// Replica reads may be stale. The library adds no consistency guarantee
// beyond what the underlying store offers; use GetFromPrimary (or the
// PrimaryOnly configuration flag) where read-your-writes matters.
package ninjaredis
