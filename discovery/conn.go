package discovery

import (
	"context"
	"net"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// NodeConfig describes one discovery (sentinel) node. Immutable, supplied
// at construction.
type NodeConfig struct {
	// Host is the discovery node address.
	Host string

	// Port is the discovery node port.
	Port int

	// AuthToken authenticates against the discovery node. Empty disables auth.
	AuthToken string

	// ConnectTimeout bounds the dial phase. Zero uses the driver default.
	ConnectTimeout time.Duration
}

// Addr returns the host:port form of the node address.
func (c NodeConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Conn is the minimal wire surface the discovery client needs from a
// sentinel connection. It is pluggable for tests.
type Conn interface {
	// Ping verifies the connection is alive and authenticated.
	Ping(ctx context.Context) error

	// Do submits a raw discovery-protocol command.
	Do(ctx context.Context, args ...any) (any, error)

	// Close releases the connection.
	Close() error
}

// Dialer creates a Conn for a discovery node.
type Dialer func(cfg NodeConfig) Conn

// goredisConn wraps *goredis.Client to implement Conn.
type goredisConn struct {
	client *goredis.Client
}

// DefaultDialer returns the go-redis backed Dialer used in production.
//
// Returns:
//   - Dialer: A dialer that opens real sentinel connections
func DefaultDialer() Dialer {
	return func(cfg NodeConfig) Conn {
		return &goredisConn{
			client: goredis.NewClient(&goredis.Options{
				Addr:        cfg.Addr(),
				Password:    cfg.AuthToken,
				DialTimeout: cfg.ConnectTimeout,
				// Candidate iteration is handled by the pool.
				MaxRetries: -1,
			}),
		}
	}
}

// Ping verifies the connection is alive and authenticated.
func (c *goredisConn) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Do submits a raw discovery-protocol command.
func (c *goredisConn) Do(ctx context.Context, args ...any) (any, error) {
	return c.client.Do(ctx, args...).Result()
}

// Close releases the connection.
func (c *goredisConn) Close() error {
	return c.client.Close()
}
