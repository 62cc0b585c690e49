// Package testutil provides test utilities and mock implementations for
// ninja-redis testing.
//
// # Mock Implementations
//
//   - [MockConn]: Scripted discovery.Conn with per-subcommand replies
//   - [MockDialer]: discovery.Dialer serving mock connections by address
//   - [MockSession]: In-memory redisadapter.Session with scripted
//     transaction results
//   - [MockConnector]: redisadapter.Connector handing out sessions by
//     endpoint address
//   - [TestMetricsCollector]: types.MetricsCollector that records calls
//     for assertions
//   - [SeqRand]: Scripted types.Rand for deterministic routing tests
//
// # Usage
//
// Script a discovery node and build a client against it:
//
//	conn := testutil.NewMockConn()
//	conn.Replies["get-master-addr-by-name"] = []any{"10.0.0.5", "6379"}
//
//	dialer := testutil.MockDialer(map[string]*testutil.MockConn{
//	    "10.0.0.1:26379": conn,
//	})
//
//	client, _ := ninjaredis.New(cfg,
//	    ninjaredis.WithDiscoveryDialer(dialer),
//	    ninjaredis.WithConnector(connector),
//	)
package testutil
