package ninjaredis

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/giantninja/ninja-redis/test/testutil"
	"github.com/giantninja/ninja-redis/types"
)

func TestConnCache_RebuildOnDeadSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.client.Set(ctx, "greeting", "hello", 0))
	require.Equal(t, 1, h.conn.QueryCount("get-master-addr-by-name"))

	// Kill the cached session and hand out a fresh one for the same
	// primary address.
	dead := h.primary
	dead.PingErr = errors.New("broken pipe")
	fresh := testutil.NewMockSession()
	h.connector.Sessions[testPrimaryAddr] = fresh

	require.NoError(t, h.client.Set(ctx, "greeting", "hello again", 0))

	require.Equal(t, 1, dead.CloseCount, "the dead session must be closed, not repaired")
	require.Equal(t, "hello again", fresh.Strings["greeting"])
	require.Equal(t, 2, h.conn.QueryCount("get-master-addr-by-name"),
		"a rebuild resolves fresh topology")
	require.Equal(t, int64(1), h.metrics.GetSessionRebuilds(types.RolePrimary))
}

func TestConnCache_ReplicaCandidateIteration(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, WithReadStrategy(fixedStrategy{role: types.RoleReplica}))

	// Two replica candidates; the first refuses connections. With identity
	// shuffling the candidates are tried in discovery order.
	h.conn.Replies["slaves"] = []any{
		[]any{"ip", "10.0.0.6", "port", "6380", "flags", "slave"},
		[]any{"ip", "10.0.0.7", "port", "6380", "flags", "slave"},
	}
	h.connector.Errs[testReplicaAddr] = errors.New("connection refused")
	delete(h.connector.Sessions, testReplicaAddr)
	second := testutil.NewMockSession()
	h.connector.Sessions["10.0.0.7:6380"] = second

	h.primary.Strings["greeting"] = "hello"
	second.Strings["greeting"] = "hello"

	val, err := h.client.Get(ctx, "greeting")
	require.NoError(t, err)
	require.Equal(t, "hello", val)

	// Primary (type inspection), failed first replica, then the second.
	require.Equal(t, []string{testPrimaryAddr, testReplicaAddr, "10.0.0.7:6380"}, h.connector.Calls)
	require.Equal(t, int64(1), h.metrics.ConnectErrors[types.RoleReplica])
}

func TestConnCache_ReplicaSetRefreshedWhenStale(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, WithReadStrategy(fixedStrategy{role: types.RoleReplica}))

	h.primary.Strings["greeting"] = "hello"
	h.replica.Strings["greeting"] = "hello"

	_, err := h.client.Get(ctx, "greeting")
	require.NoError(t, err)
	require.Equal(t, 1, h.conn.QueryCount("slaves"))

	// The replica died and was replaced; discovery now reports the new
	// address. The cached candidate list is stale.
	h.replica.PingErr = errors.New("broken pipe")
	h.connector.Errs[testReplicaAddr] = errors.New("connection refused")
	delete(h.connector.Sessions, testReplicaAddr)

	h.conn.Replies["slaves"] = []any{
		[]any{"ip", "10.0.0.7", "port", "6380", "flags", "slave"},
	}
	replacement := testutil.NewMockSession()
	replacement.Strings["greeting"] = "hello"
	h.connector.Sessions["10.0.0.7:6380"] = replacement

	val, err := h.client.Get(ctx, "greeting")
	require.NoError(t, err)
	require.Equal(t, "hello", val)
	require.Equal(t, 2, h.conn.QueryCount("slaves"),
		"exhausting cached candidates triggers one refresh")
	require.Equal(t, int64(1), h.metrics.GetSessionRebuilds(types.RoleReplica))
}

func TestConnCache_ConcurrentRebuildAcrossRoles(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, WithReadStrategy(fixedStrategy{role: types.RoleReplica}))

	h.replica.Strings["greeting"] = "hello"
	require.NoError(t, h.client.Set(ctx, "greeting", "hello", 0))

	// The primary session dies and the discovery node flaps once while a
	// writer and a reader run concurrently; both must recover. Run with
	// -race to cover the shared discovery state.
	h.primary.PingErr = errors.New("broken pipe")
	fresh := testutil.NewMockSession()
	h.connector.Sessions[testPrimaryAddr] = fresh
	h.conn.PingFailures = 1

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 25; i++ {
			if err := h.client.Set(ctx, "greeting", "hello again", 0); err != nil {
				errs <- err
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 25; i++ {
			if _, err := h.client.GetMulti(ctx, "greeting"); err != nil {
				errs <- err
				return
			}
		}
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, "hello again", fresh.Strings["greeting"])
	require.Equal(t, int64(1), h.metrics.GetSessionRebuilds(types.RolePrimary))
}

func TestConnCache_PubSubEndpointIsFixed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	pubsub := testutil.NewMockSession()
	pubsub.DoFunc = func(_ ...any) (any, error) {
		return int64(0), nil
	}
	h.connector.Sessions[testPubSubAddr] = pubsub

	_, err := h.client.Publish(ctx, "alerts", "one")
	require.NoError(t, err)
	_, err = h.client.Publish(ctx, "alerts", "two")
	require.NoError(t, err)

	require.Empty(t, h.conn.Calls, "pub/sub acquisition never queries discovery")
	require.Equal(t, []string{testPubSubAddr}, h.connector.Calls,
		"the pub/sub session is connected once and reused")
}

func TestConnCache_RolesDoNotShareSessions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, WithReadStrategy(fixedStrategy{role: types.RoleReplica}))

	h.primary.Strings["greeting"] = "primary copy"
	h.replica.Strings["greeting"] = "replica copy"

	require.NoError(t, h.client.Set(ctx, "other", "x", 0))

	val, err := h.client.Get(ctx, "greeting")
	require.NoError(t, err)
	require.Equal(t, "replica copy", val)

	val, err = h.client.GetFromPrimary(ctx, "greeting")
	require.NoError(t, err)
	require.Equal(t, "primary copy", val)
}
