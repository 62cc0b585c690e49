package ninjaredis

import (
	"context"

	redisadapter "github.com/giantninja/ninja-redis/adapter/redis"
	"github.com/giantninja/ninja-redis/types"
)

// txnExecutor runs a short command sequence as one atomic batch and
// evaluates per-command success into a single outcome.
//
// The batch cannot be rolled back after the fact; a falsy result at any
// position fails the whole operation and the raw results are logged so
// the partial application stays detectable.
type txnExecutor struct {
	logger  types.Logger
	metrics types.MetricsCollector
}

// execute submits the batch on one session and checks every result.
//
// logFields carries extra key/value context (value, ttl) for the failure
// log line.
func (t txnExecutor) execute(ctx context.Context, sess redisadapter.Session, key string, cmds []redisadapter.Command, logFields ...any) error {
	t.metrics.IncTxnTotal()

	results, err := sess.TxPipeline(ctx, cmds)
	if err != nil {
		return err
	}

	for _, res := range results {
		if truthy(res) {
			continue
		}

		t.metrics.IncTxnPartialFailure()

		fields := make([]any, 0, 4+len(logFields))
		fields = append(fields, "key", key, "results", results)
		fields = append(fields, logFields...)
		t.logger.Error("transaction partially failed", fields...)

		return &types.PartialTransactionError{Key: key, Results: results}
	}

	return nil
}

// truthy reports whether one per-command result counts as success.
//
// The store answers successful commands with "OK", a positive integer or
// true; nil, zero, empty string, false and error values all indicate the
// command did not take effect.
func truthy(v any) bool {
	switch r := v.(type) {
	case nil:
		return false
	case error:
		return false
	case bool:
		return r
	case int:
		return r != 0
	case int64:
		return r != 0
	case string:
		return r != ""
	default:
		return true
	}
}
