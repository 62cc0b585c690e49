package ninjaredis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	redisadapter "github.com/giantninja/ninja-redis/adapter/redis"
	"github.com/giantninja/ninja-redis/internal/logging"
	"github.com/giantninja/ninja-redis/test/testutil"
	"github.com/giantninja/ninja-redis/types"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{name: "nil", in: nil, want: false},
		{name: "error", in: errors.New("boom"), want: false},
		{name: "false", in: false, want: false},
		{name: "true", in: true, want: true},
		{name: "zero int", in: 0, want: false},
		{name: "zero int64", in: int64(0), want: false},
		{name: "positive int64", in: int64(1), want: true},
		{name: "empty string", in: "", want: false},
		{name: "ok string", in: "OK", want: true},
		{name: "unrecognized type", in: 3.14, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, truthy(tt.in))
		})
	}
}

func TestTxnExecutor_AllSuccess(t *testing.T) {
	ctx := context.Background()
	mc := testutil.NewTestMetricsCollector()
	exec := txnExecutor{logger: logging.NewNopLogger(), metrics: mc}
	sess := testutil.NewMockSession()

	err := exec.execute(ctx, sess, "session:42", []redisadapter.Command{
		{Name: "set", Key: "session:42", Args: []any{"payload"}},
		{Name: "expire", Key: "session:42", Args: []any{int64(600)}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), mc.TxnTotal)
	require.Zero(t, mc.GetTxnPartialFailures())
	require.Len(t, sess.TxCalls, 1)
	require.Len(t, sess.TxCalls[0], 2)
}

func TestTxnExecutor_PartialFailure(t *testing.T) {
	ctx := context.Background()
	mc := testutil.NewTestMetricsCollector()
	exec := txnExecutor{logger: logging.NewNopLogger(), metrics: mc}

	sess := testutil.NewMockSession()
	// Expire reports 0: the key vanished between the commands.
	sess.TxResults = []any{"OK", int64(0)}

	err := exec.execute(ctx, sess, "session:42", []redisadapter.Command{
		{Name: "set", Key: "session:42", Args: []any{"payload"}},
		{Name: "expire", Key: "session:42", Args: []any{int64(600)}},
	})
	require.ErrorIs(t, err, types.ErrPartialTransaction)

	var pte *types.PartialTransactionError
	require.ErrorAs(t, err, &pte)
	require.Equal(t, "session:42", pte.Key)
	require.Equal(t, []any{"OK", int64(0)}, pte.Results)
	require.Equal(t, int64(1), mc.GetTxnPartialFailures())
}

func TestTxnExecutor_TransportError(t *testing.T) {
	ctx := context.Background()
	mc := testutil.NewTestMetricsCollector()
	exec := txnExecutor{logger: logging.NewNopLogger(), metrics: mc}

	sess := testutil.NewMockSession()
	sess.TxErr = errors.New("broken pipe")

	err := exec.execute(ctx, sess, "session:42", []redisadapter.Command{
		{Name: "set", Key: "session:42", Args: []any{"payload"}},
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, types.ErrPartialTransaction,
		"a transport failure is not a partial application")
	require.Zero(t, mc.GetTxnPartialFailures())
}
