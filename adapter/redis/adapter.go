// Package redis provides the adapter between ninja-redis and the underlying
// go-redis client library.
//
// The Session interface is the only surface the rest of the library talks
// to, which keeps the routing and caching layers independent of the wire
// client and allows fakes in tests.
package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/giantninja/ninja-redis/types"
)

// Command is a single raw command inside a transaction batch.
//
// Key is prefixed with the session's key namespace before submission;
// Args are passed through unchanged.
type Command struct {
	// Name is the command name, e.g. "set" or "expire".
	Name string

	// Key is the key the command operates on. Empty for keyless commands.
	Key string

	// Args are the remaining arguments after the key.
	Args []any
}

// Message is a single pub/sub message.
type Message struct {
	// Channel is the channel the message was published to.
	Channel string

	// Payload is the message body.
	Payload string
}

// PubSub is an active subscription on one or more channels.
type PubSub interface {
	// Receive blocks until the next message arrives or ctx is done.
	Receive(ctx context.Context) (Message, error)

	// Close unsubscribes and releases the subscription.
	Close() error
}

// Session represents an established, authenticated connection to one data
// node. Key-taking methods apply the session's configured key prefix; Do
// bypasses it and submits the command in raw form.
type Session interface {
	// Get retrieves a string value. A missing key yields ("", nil).
	Get(ctx context.Context, key string) (string, error)

	// Set stores a string value with no expiry.
	Set(ctx context.Context, key string, value any) error

	// SetNX stores a value only if the key does not exist.
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)

	// MGet retrieves multiple keys; missing keys yield nil entries.
	MGet(ctx context.Context, keys ...string) ([]any, error)

	// Del removes keys and returns the number removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Exists returns how many of the given keys exist.
	Exists(ctx context.Context, keys ...string) (int64, error)

	// Type returns the declared type of the stored value ("string",
	// "hash", "list", "set", or "none" for a missing key).
	Type(ctx context.Context, key string) (string, error)

	// HGetAll retrieves every field of a hash.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HMGet retrieves selected fields of a hash in field order.
	HMGet(ctx context.Context, key string, fields ...string) ([]any, error)

	// HSet stores hash fields and returns the number of new fields.
	HSet(ctx context.Context, key string, fieldValues ...any) (int64, error)

	// IncrBy increments a counter and returns the new value.
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)

	// Expire sets a key's time-to-live.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// LRange returns list elements between start and stop inclusive.
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// TxPipeline submits the commands as one atomic batch and returns the
	// per-command results in submission order. A command-level failure
	// appears as an error value at that command's position; only a
	// batch-level transport failure is returned as err.
	TxPipeline(ctx context.Context, cmds []Command) ([]any, error)

	// Do submits a raw command, bypassing the key prefix.
	Do(ctx context.Context, args ...any) (any, error)

	// Subscribe opens a subscription on the given channels.
	Subscribe(ctx context.Context, channels ...string) PubSub

	// Ping verifies the connection is alive and authenticated.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// session wraps *goredis.Client to implement Session.
type session struct {
	client *goredis.Client
	prefix string
}

// Compile-time assertion that session implements Session.
var _ Session = (*session)(nil)

// NewSession wraps an existing go-redis client in the Session interface.
//
// Every key passed to key-taking methods is namespaced with prefix.
//
// Parameters:
//   - client: The underlying go-redis client
//   - prefix: Key namespace prefix, may be empty
//
// Returns:
//   - Session: An adapter implementing the Session interface
func NewSession(client *goredis.Client, prefix string) Session {
	return &session{client: client, prefix: prefix}
}

func (s *session) key(k string) string {
	return s.prefix + k
}

// Get retrieves a string value. A missing key yields ("", nil), matching
// the library-wide convention that absence is an empty result, not a fault.
func (s *session) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}

	return val, err
}

// Set stores a string value with no expiry.
func (s *session) Set(ctx context.Context, key string, value any) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

// SetNX stores a value only if the key does not exist.
func (s *session) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.key(key), value, ttl).Result()
}

// MGet retrieves multiple keys; missing keys yield nil entries.
func (s *session) MGet(ctx context.Context, keys ...string) ([]any, error) {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.key(k)
	}

	return s.client.MGet(ctx, prefixed...).Result()
}

// Del removes keys and returns the number removed.
func (s *session) Del(ctx context.Context, keys ...string) (int64, error) {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.key(k)
	}

	return s.client.Del(ctx, prefixed...).Result()
}

// Exists returns how many of the given keys exist.
func (s *session) Exists(ctx context.Context, keys ...string) (int64, error) {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.key(k)
	}

	return s.client.Exists(ctx, prefixed...).Result()
}

// Type returns the declared type of the stored value.
func (s *session) Type(ctx context.Context, key string) (string, error) {
	return s.client.Type(ctx, s.key(key)).Result()
}

// HGetAll retrieves every field of a hash.
func (s *session) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.client.HGetAll(ctx, s.key(key)).Result()
}

// HMGet retrieves selected fields of a hash in field order.
func (s *session) HMGet(ctx context.Context, key string, fields ...string) ([]any, error) {
	return s.client.HMGet(ctx, s.key(key), fields...).Result()
}

// HSet stores hash fields and returns the number of new fields.
func (s *session) HSet(ctx context.Context, key string, fieldValues ...any) (int64, error) {
	return s.client.HSet(ctx, s.key(key), fieldValues...).Result()
}

// IncrBy increments a counter and returns the new value.
func (s *session) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	return s.client.IncrBy(ctx, s.key(key), delta).Result()
}

// Expire sets a key's time-to-live.
func (s *session) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.Expire(ctx, s.key(key), ttl).Result()
}

// LRange returns list elements between start and stop inclusive.
func (s *session) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return s.client.LRange(ctx, s.key(key), start, stop).Result()
}

// TxPipeline submits the commands as one atomic MULTI/EXEC batch.
func (s *session) TxPipeline(ctx context.Context, cmds []Command) ([]any, error) {
	pipe := s.client.TxPipeline()

	issued := make([]*goredis.Cmd, 0, len(cmds))
	for _, c := range cmds {
		args := make([]any, 0, 2+len(c.Args))
		args = append(args, c.Name)
		if c.Key != "" {
			args = append(args, s.key(c.Key))
		}
		args = append(args, c.Args...)
		issued = append(issued, pipe.Do(ctx, args...))
	}

	_, execErr := pipe.Exec(ctx)

	results := make([]any, len(issued))
	failed := 0
	for i, cmd := range issued {
		if err := cmd.Err(); err != nil && !errors.Is(err, goredis.Nil) {
			results[i] = err
			failed++
			continue
		}
		results[i] = cmd.Val()
	}

	// When every command carries the same failure the batch never reached
	// the server; surface it as a transport error instead of results.
	if execErr != nil && failed == len(issued) {
		return nil, execErr
	}

	return results, nil
}

// Do submits a raw command, bypassing the key prefix.
func (s *session) Do(ctx context.Context, args ...any) (any, error) {
	val, err := s.client.Do(ctx, args...).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}

	return val, err
}

// Subscribe opens a subscription on the given channels.
func (s *session) Subscribe(ctx context.Context, channels ...string) PubSub {
	return &pubSub{ps: s.client.Subscribe(ctx, channels...)}
}

// Ping verifies the connection is alive and authenticated.
func (s *session) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection.
func (s *session) Close() error {
	return s.client.Close()
}

// pubSub wraps *goredis.PubSub to implement PubSub.
type pubSub struct {
	ps *goredis.PubSub
}

// Receive blocks until the next message arrives or ctx is done.
func (p *pubSub) Receive(ctx context.Context) (Message, error) {
	msg, err := p.ps.ReceiveMessage(ctx)
	if err != nil {
		return Message{}, err
	}

	return Message{Channel: msg.Channel, Payload: msg.Payload}, nil
}

// Close unsubscribes and releases the subscription.
func (p *pubSub) Close() error {
	return p.ps.Close()
}

// authErrorMarkers are the server reply fragments that identify a rejected
// credential across store versions.
var authErrorMarkers = []string{"NOAUTH", "WRONGPASS", "invalid password"}

// isAuthError reports whether err is an authentication rejection.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range authErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

// Config holds the per-session options applied to every newly established
// connection: credential, database index, key prefix and timeouts.
type Config struct {
	// Password authenticates the session. Empty disables auth.
	Password string

	// DB is the logical database index to select.
	DB int

	// KeyPrefix is the namespace prepended to every key.
	KeyPrefix string

	// ConnectTimeout bounds the dial (and implicit auth) phase.
	ConnectTimeout time.Duration

	// ReadTimeout bounds each command round trip.
	ReadTimeout time.Duration
}

// Connector establishes configured sessions against data nodes.
type Connector interface {
	// Connect dials the endpoint, authenticates and applies the session
	// configuration. The returned session is verified with a ping before
	// it is handed back.
	Connect(ctx context.Context, endpoint types.Endpoint, cfg Config) (Session, error)
}

// connector is the go-redis backed Connector.
type connector struct{}

// NewConnector creates the default go-redis backed Connector.
//
// Returns:
//   - Connector: A connector that dials real data nodes
func NewConnector() Connector {
	return connector{}
}

// Connect dials the endpoint and applies the mandatory configuration steps.
//
// Authentication happens during the dial, before any other session option
// takes effect, matching the store's requirement that auth precede other
// session options. The key prefix and read timeout are bound to the
// returned session.
//
// Parameters:
//   - ctx: Context bounding the verification ping
//   - endpoint: The data node to connect to
//   - cfg: Session configuration
//
// Returns:
//   - Session: An established, authenticated session
//   - error: types.ErrAuthFailed (wrapped) on credential rejection, or the
//     underlying dial error
func (connector) Connect(ctx context.Context, endpoint types.Endpoint, cfg Config) (Session, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        endpoint.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.ConnectTimeout,
		ReadTimeout: cfg.ReadTimeout,
		// The resilience layer owns retries by iterating candidates.
		MaxRetries: -1,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if isAuthError(err) {
			return nil, errors.Join(types.ErrAuthFailed, err)
		}

		return nil, err
	}

	return NewSession(client, cfg.KeyPrefix), nil
}
