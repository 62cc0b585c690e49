package discovery

import (
	"context"
	"sync"

	"github.com/giantninja/ninja-redis/internal/logging"
	"github.com/giantninja/ninja-redis/internal/metrics"
	"github.com/giantninja/ninja-redis/internal/random"
	"github.com/giantninja/ninja-redis/types"
)

// Pool holds the configured set of discovery clients and selects a
// reachable one, preferring the last one that worked.
//
// Sticking to the last successful node avoids reconnect races in the
// common case of a stable discovery tier; when it stops answering, the
// full candidate list is shuffled so load spreads instead of hammering
// one node.
//
// A Pool is safe for concurrent use; selection state is guarded by an
// internal mutex.
type Pool struct {
	clients []*Client
	mu      sync.Mutex
	last    *Client
	rand    types.Rand
	logger  types.Logger
	metrics types.MetricsCollector
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolRand sets the randomness source used to shuffle candidates.
//
// Parameters:
//   - r: The randomness source
//
// Returns:
//   - PoolOption: Configuration option
func WithPoolRand(r types.Rand) PoolOption {
	return func(p *Pool) {
		p.rand = r
	}
}

// WithPoolLogger sets the structured logger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - PoolOption: Configuration option
func WithPoolLogger(logger types.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithPoolMetrics sets the metrics collector.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - PoolOption: Configuration option
func WithPoolMetrics(collector types.MetricsCollector) PoolOption {
	return func(p *Pool) {
		p.metrics = collector
	}
}

// NewPool creates a pool over the given discovery clients.
//
// Parameters:
//   - clients: The candidate discovery clients
//   - opts: Optional configuration options
//
// Returns:
//   - *Pool: A new pool
func NewPool(clients []*Client, opts ...PoolOption) *Pool {
	p := &Pool{
		clients: clients,
		rand:    random.New(),
		logger:  logging.NewNopLogger(),
		metrics: metrics.NewNopMetrics(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Get returns a connected discovery client.
//
// The previously successful client is reused when it is still
// connectable; otherwise the candidate list is shuffled uniformly and
// each client is tried in order. The first success is recorded as the
// new last-successful client.
//
// Parameters:
//   - ctx: Context bounding the connect attempts
//
// Returns:
//   - *Client: A connected discovery client
//   - error: types.ErrNoDiscoveryNode when no candidate connects
func (p *Pool) Get(ctx context.Context) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last != nil {
		if p.last.Connect(ctx) {
			return p.last, nil
		}

		p.metrics.IncDiscoveryReconnect()
		p.logger.Info("last discovery node lost, re-scanning candidates",
			"addr", p.last.Addr(),
		)
		p.last = nil
	}

	order := make([]*Client, len(p.clients))
	copy(order, p.clients)
	p.rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	for _, c := range order {
		if c.Connect(ctx) {
			p.last = c

			return c, nil
		}
	}

	p.logger.Error("no discovery node reachable",
		"candidates", len(p.clients),
	)

	return nil, types.ErrNoDiscoveryNode
}

// Last returns the most recently successful client, nil if none.
func (p *Pool) Last() *Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.last
}

// Close releases every client's session, best-effort. Close failures are
// swallowed.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, c := range p.clients {
		_ = c.Close()
	}
	p.last = nil
}
