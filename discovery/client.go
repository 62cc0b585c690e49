package discovery

import (
	"context"
	"sync"

	"github.com/giantninja/ninja-redis/internal/logging"
	"github.com/giantninja/ninja-redis/internal/metrics"
	"github.com/giantninja/ninja-redis/types"
)

// Client talks to one discovery (sentinel) node.
//
// The client owns its connect state and follows a swallow-failure
// contract: Connect reports false instead of returning an error, and
// query operations return empty results on any failure. This lets the
// pool move on to the next candidate without error plumbing.
//
// Connect state is guarded by an internal mutex, so a Client is safe
// for concurrent use; queries against the same node serialize.
type Client struct {
	cfg     NodeConfig
	dial    Dialer
	mu      sync.Mutex
	conn    Conn
	logger  types.Logger
	metrics types.MetricsCollector
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDialer sets the connection dialer.
//
// The default dialer opens real sentinel connections; tests substitute
// a fake.
//
// Parameters:
//   - dial: The dialer to use
//
// Returns:
//   - ClientOption: Configuration option
func WithDialer(dial Dialer) ClientOption {
	return func(c *Client) {
		c.dial = dial
	}
}

// WithLogger sets the structured logger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - ClientOption: Configuration option
func WithLogger(logger types.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - ClientOption: Configuration option
func WithMetrics(collector types.MetricsCollector) ClientOption {
	return func(c *Client) {
		c.metrics = collector
	}
}

// NewClient creates a discovery client for one sentinel node.
//
// Parameters:
//   - cfg: The node address, credential and connect timeout
//   - opts: Optional configuration options
//
// Returns:
//   - *Client: A new discovery client
func NewClient(cfg NodeConfig, opts ...ClientOption) *Client {
	c := &Client{
		cfg:     cfg,
		dial:    DefaultDialer(),
		logger:  logging.NewNopLogger(),
		metrics: metrics.NewNopMetrics(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Host returns the configured node host.
func (c *Client) Host() string {
	return c.cfg.Host
}

// Addr returns the configured host:port of the node.
func (c *Client) Addr() string {
	return c.cfg.Addr()
}

// Connect ensures a live, authenticated session to the discovery node.
//
// An existing session is reused if it still answers a ping. Any failure
// (timeout, refused, auth rejected) tears the session down and reports
// false; failures are never surfaced as errors so the caller can try the
// next candidate.
//
// Parameters:
//   - ctx: Context bounding the connect attempt
//
// Returns:
//   - bool: true if a usable session exists
func (c *Client) Connect(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		if err := c.conn.Ping(ctx); err == nil {
			return true
		}
		// Stale session, rebuild rather than repair.
		_ = c.conn.Close()
		c.conn = nil
	}

	conn := c.dial(c.cfg)
	if err := conn.Ping(ctx); err != nil {
		c.logger.Debug("discovery node unreachable",
			"addr", c.cfg.Addr(),
			"error", err.Error(),
		)
		_ = conn.Close()

		return false
	}

	c.conn = conn

	return true
}

// Ping reports whether the current session answers a ping.
//
// Parameters:
//   - ctx: Context bounding the ping
//
// Returns:
//   - bool: true if the node responded
func (c *Client) Ping(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return false
	}

	return c.conn.Ping(ctx) == nil
}

// Close releases the session, best-effort.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil

	return err
}

// query issues one discovery-protocol command against the current session.
//
// Returns the raw reply and false on any failure, including a missing
// prior Connect.
func (c *Client) query(ctx context.Context, command string, args ...any) (any, bool) {
	c.metrics.IncDiscoveryQuery(command)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		c.metrics.IncDiscoveryError(command)
		c.logger.Warn("discovery query without connected session",
			"addr", c.cfg.Addr(),
			"command", command,
		)

		return nil, false
	}

	cmdArgs := make([]any, 0, 2+len(args))
	cmdArgs = append(cmdArgs, "sentinel", command)
	cmdArgs = append(cmdArgs, args...)

	raw, err := c.conn.Do(ctx, cmdArgs...)
	if err != nil {
		c.metrics.IncDiscoveryError(command)
		c.logger.Warn("discovery query failed",
			"addr", c.cfg.Addr(),
			"command", command,
			"error", err.Error(),
		)

		return nil, false
	}

	return raw, true
}

// Masters returns one record per monitored replication set.
//
// Parameters:
//   - ctx: Context bounding the query
//
// Returns:
//   - []Reply: Parsed records, empty on any failure
func (c *Client) Masters(ctx context.Context) []Reply {
	raw, ok := c.query(ctx, "masters")
	if !ok {
		return []Reply{}
	}

	seq, ok := raw.([]any)
	if !ok {
		return []Reply{}
	}

	return ParseReplyList(seq)
}

// Master returns the record for one monitored replication set.
//
// Parameters:
//   - ctx: Context bounding the query
//   - name: The replication set name
//
// Returns:
//   - Reply: The parsed record, empty on any failure
func (c *Client) Master(ctx context.Context, name string) Reply {
	raw, ok := c.query(ctx, "master", name)
	if !ok {
		return Reply{}
	}

	seq, ok := raw.([]any)
	if !ok {
		return Reply{}
	}

	return ParseReply(seq)
}

// Replicas returns one record per replica of the named replication set.
//
// The discovery protocol calls this query "slaves"; records still carry
// that terminology in their flags field.
//
// Parameters:
//   - ctx: Context bounding the query
//   - name: The replication set name
//
// Returns:
//   - []Reply: Parsed records, empty on any failure
func (c *Client) Replicas(ctx context.Context, name string) []Reply {
	raw, ok := c.query(ctx, "slaves", name)
	if !ok {
		return []Reply{}
	}

	seq, ok := raw.([]any)
	if !ok {
		return []Reply{}
	}

	return ParseReplyList(seq)
}

// Sentinels returns one record per peer discovery node of the named set.
//
// Parameters:
//   - ctx: Context bounding the query
//   - name: The replication set name
//
// Returns:
//   - []Reply: Parsed records, empty on any failure
func (c *Client) Sentinels(ctx context.Context, name string) []Reply {
	raw, ok := c.query(ctx, "sentinels", name)
	if !ok {
		return []Reply{}
	}

	seq, ok := raw.([]any)
	if !ok {
		return []Reply{}
	}

	return ParseReplyList(seq)
}

// MasterAddrByName resolves the current primary address of the named set.
//
// Parameters:
//   - ctx: Context bounding the query
//   - name: The replication set name
//
// Returns:
//   - types.Endpoint: The primary address
//   - bool: false on any failure or malformed reply
func (c *Client) MasterAddrByName(ctx context.Context, name string) (types.Endpoint, bool) {
	raw, ok := c.query(ctx, "get-master-addr-by-name", name)
	if !ok {
		return types.Endpoint{}, false
	}

	seq, ok := raw.([]any)
	if !ok || len(seq) < 2 {
		return types.Endpoint{}, false
	}

	return types.Endpoint{
		IP:   scalarString(seq[0]),
		Port: scalarString(seq[1]),
	}, true
}

// Reset resets all monitored sets matching the pattern.
//
// Parameters:
//   - ctx: Context bounding the query
//   - pattern: Glob pattern of set names
//
// Returns:
//   - int64: Number of sets reset, 0 on any failure
func (c *Client) Reset(ctx context.Context, pattern string) int64 {
	raw, ok := c.query(ctx, "reset", pattern)
	if !ok {
		return 0
	}

	n, ok := raw.(int64)
	if !ok {
		return 0
	}

	return n
}

// Failover triggers a manual failover of the named set.
//
// Parameters:
//   - ctx: Context bounding the query
//   - name: The replication set name
//
// Returns:
//   - bool: true if the discovery node acknowledged the failover
func (c *Client) Failover(ctx context.Context, name string) bool {
	_, ok := c.query(ctx, "failover", name)
	return ok
}

// CheckQuorum verifies that the current discovery configuration can reach
// the quorum needed to authorize a failover of the named set.
//
// Parameters:
//   - ctx: Context bounding the query
//   - name: The replication set name
//
// Returns:
//   - string: The discovery node's quorum report, empty on failure
//   - bool: true if the check succeeded
func (c *Client) CheckQuorum(ctx context.Context, name string) (string, bool) {
	raw, ok := c.query(ctx, "ckquorum", name)
	if !ok {
		return "", false
	}

	return scalarString(raw), true
}

// FlushConfig forces the discovery node to rewrite its on-disk state.
//
// Parameters:
//   - ctx: Context bounding the query
//
// Returns:
//   - bool: true if the discovery node acknowledged the flush
func (c *Client) FlushConfig(ctx context.Context) bool {
	_, ok := c.query(ctx, "flushconfig")
	return ok
}
