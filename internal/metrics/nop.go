// Package metrics provides internal metrics utilities for ninja-redis.
package metrics

import "github.com/giantninja/ninja-redis/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is
// configured, avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Read Operations
// ----------------------

// IncReadTotal discards the metric.
func (m *NopMetrics) IncReadTotal(_ types.Role) {}

// IncReadError discards the metric.
func (m *NopMetrics) IncReadError(_ types.Role) {}

// ObserveReadDuration discards the metric.
func (m *NopMetrics) ObserveReadDuration(_ types.Role, _ float64) {}

// ----------------------
// Write Operations
// ----------------------

// IncWriteTotal discards the metric.
func (m *NopMetrics) IncWriteTotal() {}

// IncWriteError discards the metric.
func (m *NopMetrics) IncWriteError() {}

// ObserveWriteDuration discards the metric.
func (m *NopMetrics) ObserveWriteDuration(_ float64) {}

// ----------------------
// Discovery
// ----------------------

// IncDiscoveryQuery discards the metric.
func (m *NopMetrics) IncDiscoveryQuery(_ string) {}

// IncDiscoveryError discards the metric.
func (m *NopMetrics) IncDiscoveryError(_ string) {}

// IncDiscoveryReconnect discards the metric.
func (m *NopMetrics) IncDiscoveryReconnect() {}

// ----------------------
// Topology
// ----------------------

// IncTopologyRefresh discards the metric.
func (m *NopMetrics) IncTopologyRefresh() {}

// SetReplicaCount discards the metric.
func (m *NopMetrics) SetReplicaCount(_ int) {}

// ----------------------
// Connections
// ----------------------

// IncConnectTotal discards the metric.
func (m *NopMetrics) IncConnectTotal(_ types.Role) {}

// IncConnectError discards the metric.
func (m *NopMetrics) IncConnectError(_ types.Role) {}

// IncSessionRebuild discards the metric.
func (m *NopMetrics) IncSessionRebuild(_ types.Role) {}

// ----------------------
// Transactions
// ----------------------

// IncTxnTotal discards the metric.
func (m *NopMetrics) IncTxnTotal() {}

// IncTxnPartialFailure discards the metric.
func (m *NopMetrics) IncTxnPartialFailure() {}
