package ninjaredis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	redisadapter "github.com/giantninja/ninja-redis/adapter/redis"
	"github.com/giantninja/ninja-redis/discovery"
	"github.com/giantninja/ninja-redis/policy"
	"github.com/giantninja/ninja-redis/topology"
	"github.com/giantninja/ninja-redis/types"
)

// Client is the public-facing command router.
//
// It decides which connection role an operation needs, applies the
// read-routing policy and executes against lazily cached sessions that
// are rebuilt from fresh topology whenever they become unusable.
//
// A Client is intended as one long-lived object per process or logical
// unit of work. Cache entries are individually locked and the discovery
// tier guards its own state, so concurrent use is safe, but operations
// give no ordering guarantees across goroutines.
type Client struct {
	id       string
	cfg      Config
	cache    *connCache
	resolver *topology.Resolver
	pool     *discovery.Pool
	strategy ReadStrategy
	txn      txnExecutor
	logger   types.Logger
	metrics  types.MetricsCollector
	closed   atomic.Bool
}

// New creates a client over the configured discovery tier.
//
// Construction is lazy: no network traffic happens until the first
// operation needs a session. The configuration is validated eagerly.
//
// Parameters:
//   - cfg: Process-lifetime configuration
//   - opts: Optional configuration options
//
// Returns:
//   - *Client: A new client
//   - error: types.ErrNoDiscoveryConfigured when cfg lists no discovery node
func New(cfg Config, opts ...Option) (*Client, error) {
	if len(cfg.DiscoveryNodes) == 0 {
		return nil, types.ErrNoDiscoveryConfigured
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	clients := make([]*discovery.Client, 0, len(cfg.DiscoveryNodes))
	for _, node := range cfg.DiscoveryNodes {
		if node.ConnectTimeout == 0 {
			node.ConnectTimeout = cfg.ConnectTimeout
		}
		clients = append(clients, discovery.NewClient(node,
			discovery.WithDialer(o.dialer),
			discovery.WithLogger(o.logger),
			discovery.WithMetrics(o.metrics),
		))
	}

	pool := discovery.NewPool(clients,
		discovery.WithPoolRand(o.rand),
		discovery.WithPoolLogger(o.logger),
		discovery.WithPoolMetrics(o.metrics),
	)

	resolver := topology.NewResolver(pool,
		topology.WithLogger(o.logger),
		topology.WithMetrics(o.metrics),
	)

	strategy := o.readStrategy
	if strategy == nil {
		if cfg.PrimaryOnly {
			strategy = policy.NewPrimaryOnlyRead()
		} else {
			strategy = policy.NewProbabilisticRead(policy.WithRand(o.rand))
		}
	}

	c := &Client{
		id:       uuid.NewString(),
		cfg:      cfg,
		cache:    newConnCache(cfg, resolver, o),
		resolver: resolver,
		pool:     pool,
		strategy: strategy,
		txn:      txnExecutor{logger: o.logger, metrics: o.metrics},
		logger:   o.logger,
		metrics:  o.metrics,
	}

	c.logger.Debug("client created",
		"client_id", c.id,
		"master", cfg.MasterName,
		"discovery_nodes", len(cfg.DiscoveryNodes),
		"primary_only", cfg.PrimaryOnly,
	)

	return c, nil
}

// ID returns the client's instance identifier used in log fields.
func (c *Client) ID() string {
	return c.id
}

// Source returns which discovery node last supplied topology.
//
// Returns:
//   - types.DiscoverySource: Observability aid, zero value before the
//     first resolution
func (c *Client) Source() types.DiscoverySource {
	return c.resolver.Source()
}

// Get retrieves the value stored at key, routed by the read policy.
//
// The stored value's declared type is inspected first (against the
// primary) and the retrieval dispatches accordingly: plain get for
// strings, full-hash retrieval for hashes, full-range retrieval for
// lists. A missing key yields (nil, nil).
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The key to retrieve
//
// Returns:
//   - any: string, map[string]string or []string depending on the stored type
//   - error: Error if routing or retrieval fails
func (c *Client) Get(ctx context.Context, key string) (any, error) {
	return c.get(ctx, key, c.strategy.Select(ctx))
}

// GetFromPrimary retrieves the value stored at key directly from the
// primary, bypassing the read policy.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The key to retrieve
//
// Returns:
//   - any: string, map[string]string or []string depending on the stored type
//   - error: Error if retrieval fails
func (c *Client) GetFromPrimary(ctx context.Context, key string) (any, error) {
	return c.get(ctx, key, types.RolePrimary)
}

// get performs the type-dispatching read against the given role.
func (c *Client) get(ctx context.Context, key string, role types.Role) (any, error) {
	if c.closed.Load() {
		return nil, types.ErrClientClosed
	}

	typ, err := c.GetTypeByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if typ == "none" {
		return nil, nil
	}

	sess, role, err := c.readSession(ctx, role)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var result any
	switch typ {
	case "hash":
		result, err = sess.HGetAll(ctx, key)
	case "list":
		result, err = sess.LRange(ctx, key, 0, -1)
	default:
		var val string
		val, err = sess.Get(ctx, key)
		result = val
	}

	c.observeRead(role, time.Since(start), err)
	if err != nil {
		c.logger.Warn("get failed",
			"client_id", c.id,
			"key", key,
			"type", typ,
			"role", role.String(),
			"error", err.Error(),
		)

		return nil, err
	}

	return result, nil
}

// GetMulti retrieves several keys in one round trip, routed by the read
// policy. Missing keys yield nil entries at their positions.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - keys: The keys to retrieve
//
// Returns:
//   - []any: One entry per key, in argument order
//   - error: Error if routing or retrieval fails
func (c *Client) GetMulti(ctx context.Context, keys ...string) ([]any, error) {
	if c.closed.Load() {
		return nil, types.ErrClientClosed
	}
	if len(keys) == 0 {
		return []any{}, nil
	}

	sess, role, err := c.readSession(ctx, c.strategy.Select(ctx))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	values, err := sess.MGet(ctx, keys...)
	c.observeRead(role, time.Since(start), err)
	if err != nil {
		c.logger.Warn("multi-get failed",
			"client_id", c.id,
			"keys", len(keys),
			"role", role.String(),
			"error", err.Error(),
		)

		return nil, err
	}

	return values, nil
}

// Set stores value at key on the primary.
//
// A map value is redirected to HMSet, preserving the historic implicit
// coercion for callers that pass structured values. A positive ttl makes
// the write atomic with its expiry: both commands run in one transaction
// batch and a falsy result on either fails the whole call.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The key to store
//   - value: Scalar value, or a map to store as a hash
//   - ttl: Expiry; zero stores without expiry
//
// Returns:
//   - error: types.ErrPartialTransaction (wrapped) on a partially applied
//     batch, or the underlying write error
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.closed.Load() {
		return types.ErrClientClosed
	}

	switch m := value.(type) {
	case map[string]any:
		return c.HMSet(ctx, key, m, ttl)
	case map[string]string:
		fields := make(map[string]any, len(m))
		for k, v := range m {
			fields[k] = v
		}

		return c.HMSet(ctx, key, fields, ttl)
	}

	sess, err := c.cache.getSession(ctx, types.RolePrimary)
	if err != nil {
		return err
	}

	start := time.Now()
	if ttl > 0 {
		err = c.txn.execute(ctx, sess, key, []redisadapter.Command{
			{Name: "set", Key: key, Args: []any{value}},
			{Name: "expire", Key: key, Args: []any{int64(ttl.Seconds())}},
		}, "value", value, "ttl", ttl)
	} else {
		err = sess.Set(ctx, key, value)
	}
	c.observeWrite(time.Since(start), err)

	if err != nil {
		c.logger.Warn("set failed",
			"client_id", c.id,
			"key", key,
			"ttl", ttl,
			"error", err.Error(),
		)
	}

	return err
}

// Add stores value at key only if the key does not already exist.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The key to store
//   - value: The value to store
//   - ttl: Expiry; zero stores without expiry
//
// Returns:
//   - bool: true if the key was absent and has been stored
//   - error: Error if the write fails
func (c *Client) Add(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c.closed.Load() {
		return false, types.ErrClientClosed
	}

	sess, err := c.cache.getSession(ctx, types.RolePrimary)
	if err != nil {
		return false, err
	}

	start := time.Now()
	stored, err := sess.SetNX(ctx, key, value, ttl)
	c.observeWrite(time.Since(start), err)

	return stored, err
}

// HMSet stores hash fields at key on the primary.
//
// A positive ttl makes the write atomic with its expiry via a
// transaction batch.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The hash key
//   - fields: Field name to value mapping
//   - ttl: Expiry; zero stores without expiry
//
// Returns:
//   - error: types.ErrPartialTransaction (wrapped) on a partially applied
//     batch, or the underlying write error
func (c *Client) HMSet(ctx context.Context, key string, fields map[string]any, ttl time.Duration) error {
	if c.closed.Load() {
		return types.ErrClientClosed
	}
	if len(fields) == 0 {
		return nil
	}

	sess, err := c.cache.getSession(ctx, types.RolePrimary)
	if err != nil {
		return err
	}

	flat := make([]any, 0, len(fields)*2)
	for f, v := range fields {
		flat = append(flat, f, v)
	}

	start := time.Now()
	if ttl > 0 {
		err = c.txn.execute(ctx, sess, key, []redisadapter.Command{
			{Name: "hset", Key: key, Args: flat},
			{Name: "expire", Key: key, Args: []any{int64(ttl.Seconds())}},
		}, "fields", len(fields), "ttl", ttl)
	} else {
		_, err = sess.HSet(ctx, key, flat...)
	}
	c.observeWrite(time.Since(start), err)

	if err != nil {
		c.logger.Warn("hmset failed",
			"client_id", c.id,
			"key", key,
			"fields", len(fields),
			"ttl", ttl,
			"error", err.Error(),
		)
	}

	return err
}

// HMGet retrieves selected hash fields from the primary.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The hash key
//   - fields: The fields to retrieve
//
// Returns:
//   - map[string]any: Field to value mapping; missing fields map to nil
//   - error: Error if retrieval fails
func (c *Client) HMGet(ctx context.Context, key string, fields ...string) (map[string]any, error) {
	if c.closed.Load() {
		return nil, types.ErrClientClosed
	}

	sess, err := c.cache.getSession(ctx, types.RolePrimary)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	values, err := sess.HMGet(ctx, key, fields...)
	c.observeRead(types.RolePrimary, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(fields))
	for i, f := range fields {
		if i < len(values) {
			out[f] = values[i]
		}
	}

	return out, nil
}

// LPushEx pushes value onto the head of the list at key, sets the list's
// expiry and optionally trims it, all in one atomic batch.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The list key
//   - value: The value to push
//   - ttl: Expiry applied to the list
//   - maxLen: Keep only the newest maxLen elements; zero disables trimming
//
// Returns:
//   - error: types.ErrPartialTransaction (wrapped) on a partially applied
//     batch, or the underlying write error
func (c *Client) LPushEx(ctx context.Context, key string, value any, ttl time.Duration, maxLen int64) error {
	if c.closed.Load() {
		return types.ErrClientClosed
	}

	sess, err := c.cache.getSession(ctx, types.RolePrimary)
	if err != nil {
		return err
	}

	cmds := []redisadapter.Command{
		{Name: "lpush", Key: key, Args: []any{value}},
		{Name: "expire", Key: key, Args: []any{int64(ttl.Seconds())}},
	}
	if maxLen > 0 {
		cmds = append(cmds, redisadapter.Command{
			Name: "ltrim", Key: key, Args: []any{int64(0), maxLen - 1},
		})
	}

	start := time.Now()
	err = c.txn.execute(ctx, sess, key, cmds, "value", value, "ttl", ttl, "max_len", maxLen)
	c.observeWrite(time.Since(start), err)

	return err
}

// Increment adds delta to the counter at key on the primary.
//
// When initial is positive and the key is absent, the counter is seeded
// with initial (honoring ttl) and that value is returned without a
// further increment. Otherwise the counter is incremented by delta.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The counter key
//   - delta: Amount to add
//   - initial: Seed value for an absent key; zero disables seeding
//   - ttl: Expiry applied when seeding; zero stores without expiry
//
// Returns:
//   - int64: The resulting counter value
//   - error: Error if the write fails
func (c *Client) Increment(ctx context.Context, key string, delta, initial int64, ttl time.Duration) (int64, error) {
	if c.closed.Load() {
		return 0, types.ErrClientClosed
	}

	sess, err := c.cache.getSession(ctx, types.RolePrimary)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	defer func() {
		c.observeWrite(time.Since(start), err)
	}()

	if initial > 0 {
		seeded, serr := sess.SetNX(ctx, key, initial, ttl)
		if serr != nil {
			err = serr
			return 0, serr
		}
		if seeded {
			return initial, nil
		}
	}

	var n int64
	n, err = sess.IncrBy(ctx, key, delta)

	return n, err
}

// Delete removes the given keys from the primary.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - keys: The keys to remove
//
// Returns:
//   - int64: Number of keys removed
//   - error: Error if the write fails
func (c *Client) Delete(ctx context.Context, keys ...string) (int64, error) {
	if c.closed.Load() {
		return 0, types.ErrClientClosed
	}

	sess, err := c.cache.getSession(ctx, types.RolePrimary)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	n, err := sess.Del(ctx, keys...)
	c.observeWrite(time.Since(start), err)

	return n, err
}

// Exists reports whether key exists, checked against the primary.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The key to check
//
// Returns:
//   - bool: true if the key exists
//   - error: Error if the check fails
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	if c.closed.Load() {
		return false, types.ErrClientClosed
	}

	sess, err := c.cache.getSession(ctx, types.RolePrimary)
	if err != nil {
		return false, err
	}

	n, err := sess.Exists(ctx, key)

	return n > 0, err
}

// GetTypeByKey returns the declared type of the value stored at key,
// inspected against the primary.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The key to inspect
//
// Returns:
//   - string: "string", "hash", "list", "set", or "none" for a missing key
//   - error: Error if the inspection fails
func (c *Client) GetTypeByKey(ctx context.Context, key string) (string, error) {
	if c.closed.Load() {
		return "", types.ErrClientClosed
	}

	sess, err := c.cache.getSession(ctx, types.RolePrimary)
	if err != nil {
		return "", err
	}

	return sess.Type(ctx, key)
}

// IsHash reports whether the value stored at key is a hash.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The key to inspect
//
// Returns:
//   - bool: true if the stored value is a hash
//   - error: Error if the inspection fails
func (c *Client) IsHash(ctx context.Context, key string) (bool, error) {
	typ, err := c.GetTypeByKey(ctx, key)
	if err != nil {
		return false, err
	}

	return typ == "hash", nil
}

// Do forwards an unmodeled command verbatim to the primary connection.
//
// This is the constrained escape hatch for operations without a typed
// method. The command bypasses the key prefix; callers must namespace
// keys themselves. A command name the store does not recognize fails
// with types.ErrUnsupportedCommand.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - name: The command name
//   - args: Arguments passed through unchanged
//
// Returns:
//   - any: The raw command result
//   - error: types.ErrUnsupportedCommand (wrapped) for unknown commands,
//     or the underlying execution error
func (c *Client) Do(ctx context.Context, name string, args ...any) (any, error) {
	if c.closed.Load() {
		return nil, types.ErrClientClosed
	}
	if name == "" {
		return nil, types.ErrUnsupportedCommand
	}

	sess, err := c.cache.getSession(ctx, types.RolePrimary)
	if err != nil {
		return nil, err
	}

	cmdArgs := make([]any, 0, 1+len(args))
	cmdArgs = append(cmdArgs, name)
	cmdArgs = append(cmdArgs, args...)

	result, err := sess.Do(ctx, cmdArgs...)
	if err != nil {
		if isUnknownCommand(err) {
			c.logger.Warn("unsupported pass-through command",
				"client_id", c.id,
				"command", name,
			)

			return nil, errors.Join(types.ErrUnsupportedCommand, err)
		}

		c.logger.Warn("pass-through command failed",
			"client_id", c.id,
			"command", name,
			"error", err.Error(),
		)

		return nil, err
	}

	return result, nil
}

// Publish sends a message on the dedicated pub/sub connection.
//
// The command is issued in raw form so channel names are never touched
// by the key prefix.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - channel: The channel to publish to
//   - message: The message body
//
// Returns:
//   - int64: Number of subscribers that received the message
//   - error: Error if publishing fails
func (c *Client) Publish(ctx context.Context, channel, message string) (int64, error) {
	if c.closed.Load() {
		return 0, types.ErrClientClosed
	}

	sess, err := c.cache.getSession(ctx, types.RolePubSub)
	if err != nil {
		return 0, err
	}

	raw, err := sess.Do(ctx, "publish", channel, message)
	if err != nil {
		return 0, err
	}

	n, ok := raw.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected publish reply type %T", raw)
	}

	return n, nil
}

// PubSub subscribes on the dedicated pub/sub connection and delivers
// messages to handler until ctx is cancelled or handler returns an error.
//
// Parameters:
//   - ctx: Context controlling the subscription lifetime
//   - channels: The channels to subscribe to
//   - handler: Called for every received message; a non-nil return stops
//     the loop and is returned to the caller
//
// Returns:
//   - error: The handler's error, or nil on context cancellation
func (c *Client) PubSub(ctx context.Context, channels []string, handler func(msg redisadapter.Message) error) error {
	if c.closed.Load() {
		return types.ErrClientClosed
	}

	sess, err := c.cache.getSession(ctx, types.RolePubSub)
	if err != nil {
		return err
	}

	sub := sess.Subscribe(ctx, channels...)
	defer func() {
		_ = sub.Close()
	}()

	for {
		msg, err := sub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return err
		}

		if err := handler(msg); err != nil {
			return err
		}
	}
}

// Close shuts the client down, closing every open session (primary,
// replica, pub/sub, discovery) best-effort. Close failures are swallowed.
//
// Returns:
//   - error: Always nil; present for io.Closer compatibility
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	c.cache.closeAll()
	c.pool.Close()

	c.logger.Debug("client closed", "client_id", c.id)

	return nil
}

// readSession acquires a session for a read. When no healthy replica can
// be found the read falls back to the primary, so a degraded replica
// tier degrades read scaling, not availability.
func (c *Client) readSession(ctx context.Context, role types.Role) (redisadapter.Session, types.Role, error) {
	sess, err := c.cache.getSession(ctx, role)
	if err == nil {
		return sess, role, nil
	}

	if role == types.RoleReplica {
		c.logger.Warn("replica unavailable, falling back to primary",
			"client_id", c.id,
			"error", err.Error(),
		)

		sess, perr := c.cache.getSession(ctx, types.RolePrimary)
		if perr == nil {
			return sess, types.RolePrimary, nil
		}
		err = perr
	}

	return nil, role, err
}

// observeRead records read metrics for one operation.
func (c *Client) observeRead(role types.Role, elapsed time.Duration, err error) {
	c.metrics.IncReadTotal(role)
	c.metrics.ObserveReadDuration(role, elapsed.Seconds())
	if err != nil {
		c.metrics.IncReadError(role)
	}
}

// observeWrite records write metrics for one operation.
func (c *Client) observeWrite(elapsed time.Duration, err error) {
	c.metrics.IncWriteTotal()
	c.metrics.ObserveWriteDuration(elapsed.Seconds())
	if err != nil {
		c.metrics.IncWriteError()
	}
}

// unknownCommandMarkers identify the server reply for a command name the
// store does not implement.
var unknownCommandMarkers = []string{"unknown command", "ERR unknown"}

// isUnknownCommand reports whether err is an unknown-command rejection.
func isUnknownCommand(err error) bool {
	msg := err.Error()
	for _, marker := range unknownCommandMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
