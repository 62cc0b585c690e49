package topology

import (
	"context"
	"sync"
	"time"

	"github.com/giantninja/ninja-redis/discovery"
	"github.com/giantninja/ninja-redis/internal/logging"
	"github.com/giantninja/ninja-redis/internal/metrics"
	"github.com/giantninja/ninja-redis/types"
)

// Resolver turns discovery-protocol answers into structured topology.
//
// Resolution happens on demand only, exactly when the connection cache
// has no usable session for a role; there is no background polling.
// A Resolver is safe for concurrent use.
type Resolver struct {
	pool    *discovery.Pool
	logger  types.Logger
	metrics types.MetricsCollector

	mu     sync.Mutex
	source types.DiscoverySource
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the structured logger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
func WithLogger(logger types.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
func WithMetrics(collector types.MetricsCollector) Option {
	return func(r *Resolver) {
		r.metrics = collector
	}
}

// NewResolver creates a resolver over a discovery pool.
//
// Parameters:
//   - pool: The discovery pool to query through
//   - opts: Optional configuration options
//
// Returns:
//   - *Resolver: A new resolver
func NewResolver(pool *discovery.Pool, opts ...Option) *Resolver {
	r := &Resolver{
		pool:    pool,
		logger:  logging.NewNopLogger(),
		metrics: metrics.NewNopMetrics(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ResolvePrimary fetches the current primary address of the named
// replication set.
//
// Parameters:
//   - ctx: Context bounding the discovery round trip
//   - masterName: The replication set name
//
// Returns:
//   - types.Endpoint: The primary address
//   - error: types.ErrNoDiscoveryNode when no discovery node is
//     reachable, types.ErrNoPrimary when the query yields no address
func (r *Resolver) ResolvePrimary(ctx context.Context, masterName string) (types.Endpoint, error) {
	client, err := r.pool.Get(ctx)
	if err != nil {
		return types.Endpoint{}, err
	}

	r.metrics.IncTopologyRefresh()

	ep, ok := client.MasterAddrByName(ctx, masterName)
	if !ok {
		r.logger.Warn("primary resolution failed",
			"master", masterName,
			"discovery", client.Addr(),
		)

		return types.Endpoint{}, types.ErrNoPrimary
	}

	r.recordSource(client.Addr())
	r.logger.Debug("primary resolved",
		"master", masterName,
		"addr", ep.Addr(),
		"discovery", client.Addr(),
	)

	return ep, nil
}

// ResolveReplicas fetches the healthy replica set of the named
// replication set.
//
// Records whose flags carry a down-state marker are excluded. An empty
// set after filtering is reported as types.ErrNoReplicaAvailable, which
// is distinct from a discovery-layer connectivity failure.
//
// Parameters:
//   - ctx: Context bounding the discovery round trip
//   - masterName: The replication set name
//
// Returns:
//   - []types.Endpoint: Healthy replicas in discovery order
//   - error: types.ErrNoDiscoveryNode or types.ErrNoReplicaAvailable
func (r *Resolver) ResolveReplicas(ctx context.Context, masterName string) ([]types.Endpoint, error) {
	client, err := r.pool.Get(ctx)
	if err != nil {
		return nil, err
	}

	r.metrics.IncTopologyRefresh()

	records := client.Replicas(ctx, masterName)
	replicas := make([]types.Endpoint, 0, len(records))
	for _, rec := range records {
		ep := types.Endpoint{
			IP:    rec.Str("ip"),
			Port:  rec.Str("port"),
			Flags: rec.Str("flags"),
		}
		if ep.IsDown() {
			r.logger.Debug("replica excluded, down flag set",
				"master", masterName,
				"addr", ep.Addr(),
				"flags", ep.Flags,
			)
			continue
		}
		replicas = append(replicas, ep)
	}

	r.metrics.SetReplicaCount(len(replicas))

	if len(replicas) == 0 {
		r.logger.Warn("no healthy replica after filtering",
			"master", masterName,
			"records", len(records),
			"discovery", client.Addr(),
		)

		return nil, types.ErrNoReplicaAvailable
	}

	r.recordSource(client.Addr())

	return replicas, nil
}

// Resolve fetches the full topology of the named replication set.
//
// A missing primary fails the resolution; an empty replica set does not,
// since a primary-only deployment is still usable.
//
// Parameters:
//   - ctx: Context bounding the discovery round trips
//   - masterName: The replication set name
//
// Returns:
//   - types.Topology: The resolved topology
//   - error: Resolution error from the primary lookup
func (r *Resolver) Resolve(ctx context.Context, masterName string) (types.Topology, error) {
	primary, err := r.ResolvePrimary(ctx, masterName)
	if err != nil {
		return types.Topology{}, err
	}

	replicas, err := r.ResolveReplicas(ctx, masterName)
	if err != nil {
		replicas = nil
	}

	return types.Topology{Primary: &primary, Replicas: replicas}, nil
}

// Source returns which discovery node last supplied topology.
//
// Returns:
//   - types.DiscoverySource: The last source, zero value if none yet
func (r *Resolver) Source() types.DiscoverySource {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.source
}

// recordSource remembers the discovery node behind the latest answer.
func (r *Resolver) recordSource(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.source = types.DiscoverySource{
		Addr:       addr,
		ResolvedAt: time.Now(),
	}
}
