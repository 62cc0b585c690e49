package testutil

import (
	"context"
	"fmt"
	"net"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	redistc "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer wraps a Redis test container.
type RedisContainer struct {
	Container *redistc.RedisContainer
	Host      string
	Port      string
}

// Addr returns the host:port form of the container address.
func (c *RedisContainer) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// RedisOptions configures the Redis container.
type RedisOptions struct {
	// Image is the Redis image to use. Defaults to "redis:7-alpine".
	Image string
}

// DefaultRedisOptions returns default options for the Redis container.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Image: "redis:7-alpine",
	}
}

// StartRedis starts a Redis container for testing.
//
// The container is automatically terminated when the test completes.
//
// Parameters:
//   - ctx: Context for container operations
//   - t: Testing context for cleanup registration
//   - opts: Optional configuration (nil uses defaults)
//
// Returns:
//   - *RedisContainer: Container with connection details
//   - error: Error if the container fails to start
func StartRedis(ctx context.Context, t *testing.T, opts *RedisOptions) (*RedisContainer, error) {
	t.Helper()

	if opts == nil {
		defaultOpts := DefaultRedisOptions()
		opts = &defaultOpts
	}

	container, err := redistc.Run(ctx, opts.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to start Redis container: %w", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis connection string: %w", err)
	}

	parsed, err := goredis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis connection string: %w", err)
	}

	host, port, err := net.SplitHostPort(parsed.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to split Redis address: %w", err)
	}

	return &RedisContainer{
		Container: container,
		Host:      host,
		Port:      port,
	}, nil
}
