package testutil

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	redisadapter "github.com/giantninja/ninja-redis/adapter/redis"
	"github.com/giantninja/ninja-redis/discovery"
	"github.com/giantninja/ninja-redis/types"
)

// MockConn is a scripted implementation of discovery.Conn.
//
// Replies are keyed by the discovery subcommand (the second Do argument),
// e.g. "slaves" or "get-master-addr-by-name".
type MockConn struct {
	mu sync.Mutex

	// PingErr, when set, makes the node look unreachable.
	PingErr error

	// PingFailures makes the next N pings fail, simulating a
	// flapping node that recovers.
	PingFailures int

	// DoErr, when set, fails every query.
	DoErr error

	// Replies maps subcommand to the raw reply Do returns.
	Replies map[string]any

	// Calls records every Do invocation's arguments.
	Calls [][]any

	// Closed reports whether Close has been called.
	Closed bool
}

// Compile-time assertion that MockConn implements discovery.Conn.
var _ discovery.Conn = (*MockConn)(nil)

// NewMockConn creates a reachable mock discovery connection.
func NewMockConn() *MockConn {
	return &MockConn{Replies: make(map[string]any)}
}

// Ping consumes a scripted failure if any remain, then returns the
// configured PingErr.
func (c *MockConn) Ping(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.PingFailures > 0 {
		c.PingFailures--

		return errors.New("testutil: scripted ping failure")
	}

	return c.PingErr
}

// Do records the call and returns the scripted reply for the subcommand.
func (c *MockConn) Do(_ context.Context, args ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls = append(c.Calls, args)

	if c.DoErr != nil {
		return nil, c.DoErr
	}

	if len(args) >= 2 {
		if sub, ok := args[1].(string); ok {
			if reply, found := c.Replies[sub]; found {
				return reply, nil
			}
		}
	}

	return nil, errors.New("testutil: no scripted reply")
}

// Close marks the connection closed.
func (c *MockConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Closed = true

	return nil
}

// QueryCount returns how many Do calls carried the given subcommand.
func (c *MockConn) QueryCount(sub string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, call := range c.Calls {
		if len(call) >= 2 && call[1] == sub {
			count++
		}
	}

	return count
}

// MockDialer returns a discovery.Dialer that hands out the given
// connections keyed by node host:port address.
//
// Unknown addresses receive a connection that never answers a ping.
func MockDialer(conns map[string]*MockConn) discovery.Dialer {
	return func(cfg discovery.NodeConfig) discovery.Conn {
		if conn, ok := conns[cfg.Addr()]; ok {
			return conn
		}

		return &MockConn{PingErr: errors.New("testutil: unknown discovery node")}
	}
}

// MockSession is an in-memory implementation of redisadapter.Session.
type MockSession struct {
	mu sync.Mutex

	// Strings, Hashes and Lists back the typed operations.
	Strings map[string]string
	Hashes  map[string]map[string]string
	Lists   map[string][]string

	// TxResults, when set, is returned by the next TxPipeline call
	// instead of executing the batch.
	TxResults []any

	// TxErr, when set, fails TxPipeline at the transport level.
	TxErr error

	// TxCalls records every submitted batch.
	TxCalls [][]redisadapter.Command

	// DoFunc, when set, handles raw Do calls.
	DoFunc func(args ...any) (any, error)

	// PingErr, when set, makes the session look unusable.
	PingErr error

	// CloseCount counts Close invocations.
	CloseCount int
}

// Compile-time assertion that MockSession implements redisadapter.Session.
var _ redisadapter.Session = (*MockSession)(nil)

// NewMockSession creates an empty in-memory session.
func NewMockSession() *MockSession {
	return &MockSession{
		Strings: make(map[string]string),
		Hashes:  make(map[string]map[string]string),
		Lists:   make(map[string][]string),
	}
}

// Get returns the stored string, or "" when absent.
func (s *MockSession) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Strings[key], nil
}

// Set stores a string value.
func (s *MockSession) Set(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Strings[key] = toString(value)

	return nil
}

// SetNX stores a value only if the key does not exist.
func (s *MockSession) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.Strings[key]; exists {
		return false, nil
	}
	s.Strings[key] = toString(value)

	return true, nil
}

// MGet returns one entry per key; missing keys yield nil.
func (s *MockSession) MGet(_ context.Context, keys ...string) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]any, len(keys))
	for i, k := range keys {
		if v, ok := s.Strings[k]; ok {
			out[i] = v
		}
	}

	return out, nil
}

// Del removes keys across all value types.
func (s *MockSession) Del(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, k := range keys {
		if _, ok := s.Strings[k]; ok {
			delete(s.Strings, k)
			n++
		}
		if _, ok := s.Hashes[k]; ok {
			delete(s.Hashes, k)
			n++
		}
		if _, ok := s.Lists[k]; ok {
			delete(s.Lists, k)
			n++
		}
	}

	return n, nil
}

// Exists counts how many of the keys exist.
func (s *MockSession) Exists(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, k := range keys {
		if _, ok := s.Strings[k]; ok {
			n++
			continue
		}
		if _, ok := s.Hashes[k]; ok {
			n++
			continue
		}
		if _, ok := s.Lists[k]; ok {
			n++
		}
	}

	return n, nil
}

// Type reports the declared type of the stored value.
func (s *MockSession) Type(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Hashes[key]; ok {
		return "hash", nil
	}
	if _, ok := s.Lists[key]; ok {
		return "list", nil
	}
	if _, ok := s.Strings[key]; ok {
		return "string", nil
	}

	return "none", nil
}

// HGetAll returns a copy of the hash at key.
func (s *MockSession) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.Hashes[key]))
	for f, v := range s.Hashes[key] {
		out[f] = v
	}

	return out, nil
}

// HMGet returns selected hash fields in field order.
func (s *MockSession) HMGet(_ context.Context, key string, fields ...string) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]any, len(fields))
	for i, f := range fields {
		if v, ok := s.Hashes[key][f]; ok {
			out[i] = v
		}
	}

	return out, nil
}

// HSet stores hash fields from alternating field/value arguments.
func (s *MockSession) HSet(_ context.Context, key string, fieldValues ...any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Hashes[key] == nil {
		s.Hashes[key] = make(map[string]string)
	}

	var added int64
	for i := 0; i+1 < len(fieldValues); i += 2 {
		f := toString(fieldValues[i])
		if _, exists := s.Hashes[key][f]; !exists {
			added++
		}
		s.Hashes[key][f] = toString(fieldValues[i+1])
	}

	return added, nil
}

// IncrBy increments the counter stored at key.
func (s *MockSession) IncrBy(_ context.Context, key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := parseInt(s.Strings[key])
	current += delta
	s.Strings[key] = toString(current)

	return current, nil
}

// Expire pretends to set a TTL and reports whether the key exists.
func (s *MockSession) Expire(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.Strings[key]
	if !ok {
		_, ok = s.Hashes[key]
	}
	if !ok {
		_, ok = s.Lists[key]
	}

	return ok, nil
}

// LRange returns list elements between start and stop inclusive.
func (s *MockSession) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.Lists[key]
	n := int64(len(list))
	if n == 0 {
		return []string{}, nil
	}

	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return []string{}, nil
	}

	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])

	return out, nil
}

// TxPipeline records the batch and returns the scripted results, or a
// truthy result per command when nothing is scripted.
func (s *MockSession) TxPipeline(_ context.Context, cmds []redisadapter.Command) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TxCalls = append(s.TxCalls, cmds)

	if s.TxErr != nil {
		return nil, s.TxErr
	}

	if s.TxResults != nil {
		return s.TxResults, nil
	}

	results := make([]any, len(cmds))
	for i := range cmds {
		results[i] = "OK"
	}

	return results, nil
}

// Do delegates to DoFunc or fails.
func (s *MockSession) Do(_ context.Context, args ...any) (any, error) {
	if s.DoFunc != nil {
		return s.DoFunc(args...)
	}

	return nil, errors.New("testutil: no DoFunc configured")
}

// Subscribe returns a subscription that never receives.
func (s *MockSession) Subscribe(_ context.Context, _ ...string) redisadapter.PubSub {
	return &mockPubSub{}
}

// Ping returns the configured PingErr.
func (s *MockSession) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.PingErr
}

// Close counts the invocation.
func (s *MockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CloseCount++

	return nil
}

// mockPubSub blocks until the context is cancelled.
type mockPubSub struct{}

// Receive waits for cancellation.
func (p *mockPubSub) Receive(ctx context.Context) (redisadapter.Message, error) {
	<-ctx.Done()
	return redisadapter.Message{}, ctx.Err()
}

// Close is a no-op.
func (p *mockPubSub) Close() error {
	return nil
}

// MockConnector hands out scripted sessions keyed by endpoint address.
type MockConnector struct {
	mu sync.Mutex

	// Sessions maps host:port to the session Connect returns.
	Sessions map[string]redisadapter.Session

	// Errs maps host:port to a connect failure.
	Errs map[string]error

	// Calls records the endpoint addresses in connect order.
	Calls []string
}

// Compile-time assertion that MockConnector implements redisadapter.Connector.
var _ redisadapter.Connector = (*MockConnector)(nil)

// NewMockConnector creates an empty connector.
func NewMockConnector() *MockConnector {
	return &MockConnector{
		Sessions: make(map[string]redisadapter.Session),
		Errs:     make(map[string]error),
	}
}

// Connect returns the scripted session or error for the endpoint.
func (c *MockConnector) Connect(_ context.Context, endpoint types.Endpoint, _ redisadapter.Config) (redisadapter.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	addr := endpoint.Addr()
	c.Calls = append(c.Calls, addr)

	if err, ok := c.Errs[addr]; ok {
		return nil, err
	}
	if sess, ok := c.Sessions[addr]; ok {
		return sess, nil
	}

	return nil, errors.New("testutil: no session scripted for " + addr)
}

// toString normalizes mock values to strings.
func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return fmt.Sprint(v)
	}
}

// parseInt reads a mock counter value, treating absence as zero.
func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
