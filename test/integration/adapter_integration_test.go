package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	redisadapter "github.com/giantninja/ninja-redis/adapter/redis"
	"github.com/giantninja/ninja-redis/test/testutil"
	"github.com/giantninja/ninja-redis/types"
)

// connectSession dials the test container and returns a configured session.
func connectSession(ctx context.Context, t *testing.T, container *testutil.RedisContainer, prefix string) redisadapter.Session {
	t.Helper()

	sess, err := redisadapter.NewConnector().Connect(ctx,
		types.Endpoint{IP: container.Host, Port: container.Port},
		redisadapter.Config{
			KeyPrefix:      prefix,
			ConnectTimeout: 5 * time.Second,
			ReadTimeout:    2 * time.Second,
		},
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sess.Close()
	})

	return sess
}

func TestSessionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testutil.StartRedis(ctx, t, nil)
	require.NoError(t, err)

	sess := connectSession(ctx, t, container, "")

	t.Run("string round trip", func(t *testing.T) {
		require.NoError(t, sess.Set(ctx, "greeting", "hello"))

		val, err := sess.Get(ctx, "greeting")
		require.NoError(t, err)
		require.Equal(t, "hello", val)

		typ, err := sess.Type(ctx, "greeting")
		require.NoError(t, err)
		require.Equal(t, "string", typ)
	})

	t.Run("missing key is empty, not an error", func(t *testing.T) {
		val, err := sess.Get(ctx, "absent")
		require.NoError(t, err)
		require.Empty(t, val)

		typ, err := sess.Type(ctx, "absent")
		require.NoError(t, err)
		require.Equal(t, "none", typ)
	})

	t.Run("hash round trip", func(t *testing.T) {
		_, err := sess.HSet(ctx, "user:1", "name", "alice", "age", "30")
		require.NoError(t, err)

		fields, err := sess.HGetAll(ctx, "user:1")
		require.NoError(t, err)
		require.Equal(t, map[string]string{"name": "alice", "age": "30"}, fields)

		selected, err := sess.HMGet(ctx, "user:1", "name", "missing")
		require.NoError(t, err)
		require.Equal(t, "alice", selected[0])
		require.Nil(t, selected[1])
	})

	t.Run("counter", func(t *testing.T) {
		n, err := sess.IncrBy(ctx, "visits", 3)
		require.NoError(t, err)
		require.Equal(t, int64(3), n)

		n, err = sess.IncrBy(ctx, "visits", 2)
		require.NoError(t, err)
		require.Equal(t, int64(5), n)
	})

	t.Run("delete and exists", func(t *testing.T) {
		require.NoError(t, sess.Set(ctx, "temp", "x"))

		n, err := sess.Exists(ctx, "temp")
		require.NoError(t, err)
		require.Equal(t, int64(1), n)

		removed, err := sess.Del(ctx, "temp", "never-existed")
		require.NoError(t, err)
		require.Equal(t, int64(1), removed)
	})
}

func TestSessionKeyPrefixIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testutil.StartRedis(ctx, t, nil)
	require.NoError(t, err)

	appA := connectSession(ctx, t, container, "app-a:")
	appB := connectSession(ctx, t, container, "app-b:")

	require.NoError(t, appA.Set(ctx, "greeting", "from a"))
	require.NoError(t, appB.Set(ctx, "greeting", "from b"))

	val, err := appA.Get(ctx, "greeting")
	require.NoError(t, err)
	require.Equal(t, "from a", val)

	val, err = appB.Get(ctx, "greeting")
	require.NoError(t, err)
	require.Equal(t, "from b", val)

	// Raw commands bypass the prefix, so the namespaced key is visible.
	raw, err := appA.Do(ctx, "get", "app-a:greeting")
	require.NoError(t, err)
	require.Equal(t, "from a", raw)
}

func TestSessionTxPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testutil.StartRedis(ctx, t, nil)
	require.NoError(t, err)

	sess := connectSession(ctx, t, container, "")

	t.Run("write with expiry", func(t *testing.T) {
		results, err := sess.TxPipeline(ctx, []redisadapter.Command{
			{Name: "set", Key: "session:42", Args: []any{"payload"}},
			{Name: "expire", Key: "session:42", Args: []any{int64(600)}},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		require.Equal(t, "OK", results[0])
		require.Equal(t, int64(1), results[1])

		ttl, err := sess.Do(ctx, "ttl", "session:42")
		require.NoError(t, err)
		require.Greater(t, ttl.(int64), int64(0))
	})

	t.Run("per-command failure is visible in results", func(t *testing.T) {
		results, err := sess.TxPipeline(ctx, []redisadapter.Command{
			{Name: "set", Key: "present", Args: []any{"x"}},
			{Name: "expire", Key: "never-existed", Args: []any{int64(600)}},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		require.Equal(t, "OK", results[0])
		require.Equal(t, int64(0), results[1], "expire on a missing key reports 0")
	})
}

func TestSessionPubSub(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testutil.StartRedis(ctx, t, nil)
	require.NoError(t, err)

	subscriber := connectSession(ctx, t, container, "")
	publisher := connectSession(ctx, t, container, "")

	sub := subscriber.Subscribe(ctx, "alerts")
	t.Cleanup(func() {
		_ = sub.Close()
	})

	// Subscription registration races the publish; retry until delivered.
	received := make(chan redisadapter.Message, 1)
	go func() {
		msg, err := sub.Receive(ctx)
		if err == nil {
			received <- msg
		}
	}()

	require.Eventually(t, func() bool {
		_, err := publisher.Do(ctx, "publish", "alerts", "disk full")
		if err != nil {
			return false
		}
		select {
		case msg := <-received:
			require.Equal(t, "alerts", msg.Channel)
			require.Equal(t, "disk full", msg.Payload)
			return true
		default:
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)
}
