package types

// MetricsCollector defines methods for collecting operational metrics.
//
// Role-scoped methods accept a Role parameter for labeling.
// Implementations should be thread-safe as methods may be called concurrently.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/giantninja/ninja-redis/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	client, _ := ninjaredis.New(cfg, ninjaredis.WithMetrics(collector))
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Read Operations
	// ----------------------

	// IncReadTotal increments the total read operations counter.
	IncReadTotal(role Role)

	// IncReadError increments the read error counter.
	IncReadError(role Role)

	// ObserveReadDuration records a read operation duration in seconds.
	ObserveReadDuration(role Role, seconds float64)

	// ----------------------
	// Write Operations
	// ----------------------

	// IncWriteTotal increments the total write operations counter.
	// Writes always target the primary, so there is no role label.
	IncWriteTotal()

	// IncWriteError increments the write error counter.
	IncWriteError()

	// ObserveWriteDuration records a write operation duration in seconds.
	ObserveWriteDuration(seconds float64)

	// ----------------------
	// Discovery
	// ----------------------

	// IncDiscoveryQuery increments the per-command discovery query counter.
	IncDiscoveryQuery(command string)

	// IncDiscoveryError increments the per-command discovery failure counter.
	IncDiscoveryError(command string)

	// IncDiscoveryReconnect increments the counter when the pool abandons
	// its last-successful node and re-scans the candidate list.
	IncDiscoveryReconnect()

	// ----------------------
	// Topology
	// ----------------------

	// IncTopologyRefresh increments the counter for on-demand topology
	// resolutions (cache misses).
	IncTopologyRefresh()

	// SetReplicaCount sets the healthy replica count gauge after filtering.
	SetReplicaCount(count int)

	// ----------------------
	// Connections
	// ----------------------

	// IncConnectTotal increments the per-role connect attempt counter.
	IncConnectTotal(role Role)

	// IncConnectError increments the per-role connect failure counter.
	IncConnectError(role Role)

	// IncSessionRebuild increments the counter when a cached session is
	// discarded and rebuilt after a health-check failure.
	IncSessionRebuild(role Role)

	// ----------------------
	// Transactions
	// ----------------------

	// IncTxnTotal increments the total transaction batch counter.
	IncTxnTotal()

	// IncTxnPartialFailure increments the counter for batches where one
	// or more commands reported a falsy result.
	IncTxnPartialFailure()
}
