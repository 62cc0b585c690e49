package ninjaredis

import (
	"context"
	"sync"

	redisadapter "github.com/giantninja/ninja-redis/adapter/redis"
	"github.com/giantninja/ninja-redis/topology"
	"github.com/giantninja/ninja-redis/types"
)

// connEntry is one cached connection role. Each entry carries its own
// mutex so a slow replica rebuild does not block primary traffic.
type connEntry struct {
	mu       sync.Mutex
	session  redisadapter.Session
	endpoint types.Endpoint
}

// connCache lazily establishes and reuses the primary, replica and
// pub/sub sessions.
//
// A cached session is reusable only while it still answers a ping;
// otherwise it is discarded and rebuilt from fresh topology, never
// repaired in place. Topology is recomputed on demand exactly when a
// role has no usable session; there is no background polling.
type connCache struct {
	cfg        Config
	sessionCfg redisadapter.Config
	resolver   *topology.Resolver
	connector  redisadapter.Connector
	rand       types.Rand
	logger     types.Logger
	metrics    types.MetricsCollector

	primary connEntry
	replica connEntry
	pubsub  connEntry

	// replicaSet is the cached healthy replica list, guarded by
	// replica.mu (it is only touched during replica acquisition).
	replicaSet []types.Endpoint
}

// newConnCache creates the cache over a resolver and connector.
func newConnCache(cfg Config, resolver *topology.Resolver, opts *options) *connCache {
	return &connCache{
		cfg:        cfg,
		sessionCfg: cfg.sessionConfig(),
		resolver:   resolver,
		connector:  opts.connector,
		rand:       opts.rand,
		logger:     opts.logger,
		metrics:    opts.metrics,
	}
}

// getSession returns a live, configured session for the role, reusing the
// cached one when healthy.
func (c *connCache) getSession(ctx context.Context, role types.Role) (redisadapter.Session, error) {
	switch role {
	case types.RoleReplica:
		return c.getReplica(ctx)
	case types.RolePubSub:
		return c.getPubSub(ctx)
	default:
		return c.getPrimary(ctx)
	}
}

// getPrimary returns the primary session, resolving fresh topology when
// the cached session is unusable.
func (c *connCache) getPrimary(ctx context.Context) (redisadapter.Session, error) {
	e := &c.primary
	e.mu.Lock()
	defer e.mu.Unlock()

	if sess, ok := c.reusable(ctx, e, types.RolePrimary); ok {
		return sess, nil
	}

	ep, err := c.resolver.ResolvePrimary(ctx, c.cfg.MasterName)
	if err != nil {
		return nil, err
	}

	sess, err := c.connect(ctx, types.RolePrimary, ep)
	if err != nil {
		return nil, err
	}

	e.session = sess
	e.endpoint = ep

	return sess, nil
}

// getReplica returns a replica session, trying shuffled candidates in
// order. An exhausted candidate list is refreshed once before failure is
// declared.
func (c *connCache) getReplica(ctx context.Context) (redisadapter.Session, error) {
	e := &c.replica
	e.mu.Lock()
	defer e.mu.Unlock()

	if sess, ok := c.reusable(ctx, e, types.RoleReplica); ok {
		return sess, nil
	}

	fromCache := len(c.replicaSet) > 0
	if !fromCache {
		replicas, err := c.resolver.ResolveReplicas(ctx, c.cfg.MasterName)
		if err != nil {
			return nil, err
		}
		c.replicaSet = replicas
	}

	sess, err := c.connectAnyReplica(ctx, c.replicaSet)
	if err == nil {
		return sess, nil
	}

	// Cached candidates may all be stale; refresh the set once.
	if fromCache {
		replicas, rerr := c.resolver.ResolveReplicas(ctx, c.cfg.MasterName)
		if rerr != nil {
			return nil, rerr
		}
		c.replicaSet = replicas

		if sess, err = c.connectAnyReplica(ctx, c.replicaSet); err == nil {
			return sess, nil
		}
	}

	return nil, err
}

// connectAnyReplica shuffles the candidates and connects the first that
// accepts, caching the resulting session.
func (c *connCache) connectAnyReplica(ctx context.Context, candidates []types.Endpoint) (redisadapter.Session, error) {
	order := make([]types.Endpoint, len(candidates))
	copy(order, candidates)
	c.rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	var lastErr error = types.ErrNoReplicaAvailable
	for _, ep := range order {
		sess, err := c.connect(ctx, types.RoleReplica, ep)
		if err != nil {
			lastErr = err
			continue
		}

		c.replica.session = sess
		c.replica.endpoint = ep

		return sess, nil
	}

	return nil, lastErr
}

// getPubSub returns the pub/sub session against the fixed configured
// endpoint; it is connected once and reused thereafter.
func (c *connCache) getPubSub(ctx context.Context) (redisadapter.Session, error) {
	if c.cfg.PubSub.IP == "" {
		return nil, types.ErrNoPubSubEndpoint
	}

	e := &c.pubsub
	e.mu.Lock()
	defer e.mu.Unlock()

	if sess, ok := c.reusable(ctx, e, types.RolePubSub); ok {
		return sess, nil
	}

	sess, err := c.connect(ctx, types.RolePubSub, c.cfg.PubSub)
	if err != nil {
		return nil, err
	}

	e.session = sess
	e.endpoint = c.cfg.PubSub

	return sess, nil
}

// reusable reports whether the entry's session is still healthy. An
// unhealthy session is closed and dropped; the caller must rebuild.
// The entry's mutex must be held.
func (c *connCache) reusable(ctx context.Context, e *connEntry, role types.Role) (redisadapter.Session, bool) {
	if e.session == nil {
		return nil, false
	}

	if err := e.session.Ping(ctx); err == nil {
		return e.session, true
	}

	c.metrics.IncSessionRebuild(role)
	c.logger.Info("cached session unusable, rebuilding",
		"role", role.String(),
		"addr", e.endpoint.Addr(),
	)

	_ = e.session.Close()
	e.session = nil

	return nil, false
}

// connect dials and configures one data node for the role.
func (c *connCache) connect(ctx context.Context, role types.Role, ep types.Endpoint) (redisadapter.Session, error) {
	c.metrics.IncConnectTotal(role)

	sess, err := c.connector.Connect(ctx, ep, c.sessionCfg)
	if err != nil {
		c.metrics.IncConnectError(role)
		c.logger.Warn("data node connect failed",
			"role", role.String(),
			"addr", ep.Addr(),
			"error", err.Error(),
		)

		return nil, &types.ConnectionError{Role: role, Endpoint: ep, Cause: err}
	}

	c.logger.Debug("data node connected",
		"role", role.String(),
		"addr", ep.Addr(),
	)

	return sess, nil
}

// closeAll closes every open session, best-effort. Failures are swallowed.
func (c *connCache) closeAll() {
	for _, e := range []*connEntry{&c.primary, &c.replica, &c.pubsub} {
		e.mu.Lock()
		if e.session != nil {
			_ = e.session.Close()
			e.session = nil
		}
		e.mu.Unlock()
	}
}
