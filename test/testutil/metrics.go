package testutil

import (
	"sync"

	"github.com/giantninja/ninja-redis/types"
)

// TestMetricsCollector is a test implementation of types.MetricsCollector
// that tracks method calls for assertion in tests.
type TestMetricsCollector struct {
	mu sync.RWMutex

	// Read operations, per role
	ReadTotal    map[types.Role]int64
	ReadErrors   map[types.Role]int64
	ReadDuration map[types.Role][]float64

	// Write operations
	WriteTotal    int64
	WriteErrors   int64
	WriteDuration []float64

	// Discovery, per command
	DiscoveryQueries    map[string]int64
	DiscoveryErrors     map[string]int64
	DiscoveryReconnects int64

	// Topology
	TopologyRefreshes int64
	ReplicaCount      int

	// Connections, per role
	ConnectTotal    map[types.Role]int64
	ConnectErrors   map[types.Role]int64
	SessionRebuilds map[types.Role]int64

	// Transactions
	TxnTotal           int64
	TxnPartialFailures int64
}

// Compile-time assertion that TestMetricsCollector implements types.MetricsCollector.
var _ types.MetricsCollector = (*TestMetricsCollector)(nil)

// NewTestMetricsCollector creates a new test metrics collector.
func NewTestMetricsCollector() *TestMetricsCollector {
	return &TestMetricsCollector{
		ReadTotal:        make(map[types.Role]int64),
		ReadErrors:       make(map[types.Role]int64),
		ReadDuration:     make(map[types.Role][]float64),
		DiscoveryQueries: make(map[string]int64),
		DiscoveryErrors:  make(map[string]int64),
		ConnectTotal:     make(map[types.Role]int64),
		ConnectErrors:    make(map[types.Role]int64),
		SessionRebuilds:  make(map[types.Role]int64),
	}
}

// ----------------------
// Read Operations
// ----------------------

func (m *TestMetricsCollector) IncReadTotal(role types.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadTotal[role]++
}

func (m *TestMetricsCollector) IncReadError(role types.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadErrors[role]++
}

func (m *TestMetricsCollector) ObserveReadDuration(role types.Role, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadDuration[role] = append(m.ReadDuration[role], seconds)
}

// ----------------------
// Write Operations
// ----------------------

func (m *TestMetricsCollector) IncWriteTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteTotal++
}

func (m *TestMetricsCollector) IncWriteError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteErrors++
}

func (m *TestMetricsCollector) ObserveWriteDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteDuration = append(m.WriteDuration, seconds)
}

// ----------------------
// Discovery
// ----------------------

func (m *TestMetricsCollector) IncDiscoveryQuery(command string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DiscoveryQueries[command]++
}

func (m *TestMetricsCollector) IncDiscoveryError(command string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DiscoveryErrors[command]++
}

func (m *TestMetricsCollector) IncDiscoveryReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DiscoveryReconnects++
}

// ----------------------
// Topology
// ----------------------

func (m *TestMetricsCollector) IncTopologyRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopologyRefreshes++
}

func (m *TestMetricsCollector) SetReplicaCount(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplicaCount = count
}

// ----------------------
// Connections
// ----------------------

func (m *TestMetricsCollector) IncConnectTotal(role types.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectTotal[role]++
}

func (m *TestMetricsCollector) IncConnectError(role types.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectErrors[role]++
}

func (m *TestMetricsCollector) IncSessionRebuild(role types.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionRebuilds[role]++
}

// ----------------------
// Transactions
// ----------------------

func (m *TestMetricsCollector) IncTxnTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TxnTotal++
}

func (m *TestMetricsCollector) IncTxnPartialFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TxnPartialFailures++
}

// ----------------------
// Test Helpers
// ----------------------

// GetReadTotal returns the read count for a role.
func (m *TestMetricsCollector) GetReadTotal(role types.Role) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ReadTotal[role]
}

// GetDiscoveryQueries returns the query count for a discovery command.
func (m *TestMetricsCollector) GetDiscoveryQueries(command string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.DiscoveryQueries[command]
}

// GetSessionRebuilds returns the rebuild count for a role.
func (m *TestMetricsCollector) GetSessionRebuilds(role types.Role) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.SessionRebuilds[role]
}

// GetTxnPartialFailures returns the partial transaction failure count.
func (m *TestMetricsCollector) GetTxnPartialFailures() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.TxnPartialFailures
}

// GetReplicaCount returns the last recorded replica count.
func (m *TestMetricsCollector) GetReplicaCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ReplicaCount
}

// Reset clears all collected metrics.
func (m *TestMetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReadTotal = make(map[types.Role]int64)
	m.ReadErrors = make(map[types.Role]int64)
	m.ReadDuration = make(map[types.Role][]float64)
	m.WriteTotal = 0
	m.WriteErrors = 0
	m.WriteDuration = nil
	m.DiscoveryQueries = make(map[string]int64)
	m.DiscoveryErrors = make(map[string]int64)
	m.DiscoveryReconnects = 0
	m.TopologyRefreshes = 0
	m.ReplicaCount = 0
	m.ConnectTotal = make(map[types.Role]int64)
	m.ConnectErrors = make(map[types.Role]int64)
	m.SessionRebuilds = make(map[types.Role]int64)
	m.TxnTotal = 0
	m.TxnPartialFailures = 0
}
