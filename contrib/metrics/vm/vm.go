package vm

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"

	"github.com/giantninja/ninja-redis/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "ninjaredis"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead
// of creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// roles carries every connection role the collector pre-creates
// per-role metrics for.
var roles = []types.Role{
	types.RolePrimary,
	types.RoleReplica,
	types.RolePubSub,
	types.RoleDiscovery,
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// Per-role metrics are pre-created at initialization time; per-command
// discovery counters are created on first use since the command set is
// open-ended. Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Read metrics, per role
	readTotal    map[types.Role]*metrics.Counter
	readErrors   map[types.Role]*metrics.Counter
	readDuration map[types.Role]*metrics.Histogram

	// Write metrics (writes always target the primary)
	writeTotal    *metrics.Counter
	writeErrors   *metrics.Counter
	writeDuration *metrics.Histogram

	// Discovery metrics
	discoveryReconnects *metrics.Counter

	// Topology metrics
	topologyRefreshes *metrics.Counter
	replicaCount      *metrics.Gauge

	// Connection metrics, per role
	connectTotal    map[types.Role]*metrics.Counter
	connectErrors   map[types.Role]*metrics.Counter
	sessionRebuilds map[types.Role]*metrics.Counter

	// Transaction metrics
	txnTotal          *metrics.Counter
	txnPartialFailure *metrics.Counter

	replicaCountValue atomic.Int64
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally
// unless WithMetricsSet provides one.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	client, _ := ninjaredis.New(cfg, ninjaredis.WithMetrics(collector))
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "ninjaredis",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates the per-role metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix

	c.readTotal = make(map[types.Role]*metrics.Counter, len(roles))
	c.readErrors = make(map[types.Role]*metrics.Counter, len(roles))
	c.readDuration = make(map[types.Role]*metrics.Histogram, len(roles))
	c.connectTotal = make(map[types.Role]*metrics.Counter, len(roles))
	c.connectErrors = make(map[types.Role]*metrics.Counter, len(roles))
	c.sessionRebuilds = make(map[types.Role]*metrics.Counter, len(roles))

	for _, role := range roles {
		c.readTotal[role] = c.set.NewCounter(fmt.Sprintf(`%s_read_total{role="%s"}`, p, role))
		c.readErrors[role] = c.set.NewCounter(fmt.Sprintf(`%s_read_errors_total{role="%s"}`, p, role))
		c.readDuration[role] = c.set.NewHistogram(fmt.Sprintf(`%s_read_duration_seconds{role="%s"}`, p, role))
		c.connectTotal[role] = c.set.NewCounter(fmt.Sprintf(`%s_connect_total{role="%s"}`, p, role))
		c.connectErrors[role] = c.set.NewCounter(fmt.Sprintf(`%s_connect_errors_total{role="%s"}`, p, role))
		c.sessionRebuilds[role] = c.set.NewCounter(fmt.Sprintf(`%s_session_rebuilds_total{role="%s"}`, p, role))
	}

	c.writeTotal = c.set.NewCounter(p + "_write_total")
	c.writeErrors = c.set.NewCounter(p + "_write_errors_total")
	c.writeDuration = c.set.NewHistogram(p + "_write_duration_seconds")

	c.discoveryReconnects = c.set.NewCounter(p + "_discovery_reconnects_total")

	c.topologyRefreshes = c.set.NewCounter(p + "_topology_refreshes_total")
	c.replicaCount = c.set.NewGauge(p+"_replica_count", func() float64 {
		return float64(c.replicaCountValue.Load())
	})

	c.txnTotal = c.set.NewCounter(p + "_txn_total")
	c.txnPartialFailure = c.set.NewCounter(p + "_txn_partial_failures_total")
}

// IncReadTotal increments the total read operations counter.
func (c *Collector) IncReadTotal(role types.Role) {
	if m, ok := c.readTotal[role]; ok {
		m.Inc()
	}
}

// IncReadError increments the read error counter.
func (c *Collector) IncReadError(role types.Role) {
	if m, ok := c.readErrors[role]; ok {
		m.Inc()
	}
}

// ObserveReadDuration records a read operation duration in seconds.
func (c *Collector) ObserveReadDuration(role types.Role, seconds float64) {
	if m, ok := c.readDuration[role]; ok {
		m.Update(seconds)
	}
}

// IncWriteTotal increments the total write operations counter.
func (c *Collector) IncWriteTotal() {
	c.writeTotal.Inc()
}

// IncWriteError increments the write error counter.
func (c *Collector) IncWriteError() {
	c.writeErrors.Inc()
}

// ObserveWriteDuration records a write operation duration in seconds.
func (c *Collector) ObserveWriteDuration(seconds float64) {
	c.writeDuration.Update(seconds)
}

// IncDiscoveryQuery increments the per-command discovery query counter.
func (c *Collector) IncDiscoveryQuery(command string) {
	c.set.GetOrCreateCounter(fmt.Sprintf(`%s_discovery_queries_total{command="%s"}`, c.prefix, command)).Inc()
}

// IncDiscoveryError increments the per-command discovery failure counter.
func (c *Collector) IncDiscoveryError(command string) {
	c.set.GetOrCreateCounter(fmt.Sprintf(`%s_discovery_errors_total{command="%s"}`, c.prefix, command)).Inc()
}

// IncDiscoveryReconnect increments the discovery re-scan counter.
func (c *Collector) IncDiscoveryReconnect() {
	c.discoveryReconnects.Inc()
}

// IncTopologyRefresh increments the on-demand topology resolution counter.
func (c *Collector) IncTopologyRefresh() {
	c.topologyRefreshes.Inc()
}

// SetReplicaCount sets the healthy replica count gauge.
func (c *Collector) SetReplicaCount(count int) {
	c.replicaCountValue.Store(int64(count))
}

// IncConnectTotal increments the per-role connect attempt counter.
func (c *Collector) IncConnectTotal(role types.Role) {
	if m, ok := c.connectTotal[role]; ok {
		m.Inc()
	}
}

// IncConnectError increments the per-role connect failure counter.
func (c *Collector) IncConnectError(role types.Role) {
	if m, ok := c.connectErrors[role]; ok {
		m.Inc()
	}
}

// IncSessionRebuild increments the per-role session rebuild counter.
func (c *Collector) IncSessionRebuild(role types.Role) {
	if m, ok := c.sessionRebuilds[role]; ok {
		m.Inc()
	}
}

// IncTxnTotal increments the total transaction batch counter.
func (c *Collector) IncTxnTotal() {
	c.txnTotal.Inc()
}

// IncTxnPartialFailure increments the partial transaction failure counter.
func (c *Collector) IncTxnPartialFailure() {
	c.txnPartialFailure.Inc()
}

// Handler writes all collected metrics in Prometheus text format.
//
// Use it to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}
