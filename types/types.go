// Package types provides shared types and errors for the ninja-redis library.
//
// This is a "leaf" package with no imports from other ninja-redis packages,
// allowing it to be imported by any package without causing import cycles.
package types

import (
	"errors"
	"net"
	"strings"
	"time"
)

// Role identifies which kind of connection an operation needs.
type Role string

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

const (
	// RolePrimary is the single write-accepting node of the replication set.
	RolePrimary Role = "primary"
	// RoleReplica is a read-only copy of the primary; reads may be stale.
	RoleReplica Role = "replica"
	// RolePubSub is the dedicated publish/subscribe endpoint.
	RolePubSub Role = "pubsub"
	// RoleDiscovery is a sentinel (discovery-service) node.
	RoleDiscovery Role = "discovery"
)

// downMarker is the substring sentinel uses to flag unreachable nodes
// (covers "s_down", "o_down" and plain "down").
const downMarker = "down"

// Endpoint is a resolved data-node address as reported by discovery.
//
// Endpoints are produced fresh on every topology query and are never
// mutated, only replaced.
type Endpoint struct {
	// IP is the node address as reported by the discovery service.
	IP string

	// Port is the node port. Kept as a string because the discovery
	// protocol reports it as one.
	Port string

	// Flags is the raw comma-separated status token set from discovery,
	// e.g. "slave" or "slave,s_down,disconnected". Empty for endpoints
	// that did not come from a flagged record (e.g. the primary address).
	Flags string
}

// Addr returns the host:port form of the endpoint.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.IP, e.Port)
}

// IsDown reports whether the endpoint's status flags contain a
// down-state marker.
func (e Endpoint) IsDown() bool {
	return strings.Contains(e.Flags, downMarker)
}

// Topology is the resolved primary/replica layout at a point in time.
//
// Invariant: Replicas never contains an endpoint whose flags carry a
// down-state marker. Primary is nil only when discovery has never
// successfully resolved one.
type Topology struct {
	// Primary is the current write-accepting node, nil if unresolved.
	Primary *Endpoint

	// Replicas are the healthy read-only nodes, in discovery order.
	Replicas []Endpoint
}

// HasPrimary reports whether a primary has been resolved.
func (t Topology) HasPrimary() bool {
	return t.Primary != nil
}

// DiscoverySource records which discovery node last supplied topology.
//
// This is an observability aid only; it is never used for correctness.
type DiscoverySource struct {
	// Addr is the host:port of the discovery node.
	Addr string

	// ResolvedAt is when that node last answered a topology query.
	ResolvedAt time.Time
}

// Rand is the randomness source used for discovery-node and replica
// selection and for probabilistic read routing.
//
// It is pluggable so routing-distribution tests can be deterministic.
// The default implementation wraps math/rand/v2.
type Rand interface {
	// IntN returns a uniform random int in [0, n).
	IntN(n int) int

	// Shuffle pseudo-randomizes the order of n elements via swap.
	Shuffle(n int, swap func(i, j int))
}

// Sentinel errors for common failure scenarios.
var (
	// ErrNoDiscoveryNode indicates that no configured discovery node
	// accepted a connection.
	ErrNoDiscoveryNode = errors.New("ninjaredis: no discovery node reachable")

	// ErrNoPrimary indicates the discovery tier could not supply a
	// primary address.
	ErrNoPrimary = errors.New("ninjaredis: primary address could not be resolved")

	// ErrNoReplicaAvailable indicates the healthy replica set was empty
	// after filtering. This is distinct from a discovery-layer
	// connectivity failure.
	ErrNoReplicaAvailable = errors.New("ninjaredis: no healthy replica available")

	// ErrAuthFailed indicates the store rejected the configured credential.
	ErrAuthFailed = errors.New("ninjaredis: authentication rejected")

	// ErrClientClosed indicates an operation was attempted on a closed client.
	ErrClientClosed = errors.New("ninjaredis: client is closed")

	// ErrNilConfig indicates that a nil configuration was provided.
	ErrNilConfig = errors.New("ninjaredis: config cannot be nil")

	// ErrNoDiscoveryConfigured indicates construction without any
	// discovery node in the configuration.
	ErrNoDiscoveryConfigured = errors.New("ninjaredis: at least one discovery node is required")

	// ErrUnsupportedCommand indicates a pass-through command name the
	// underlying session does not recognize.
	ErrUnsupportedCommand = errors.New("ninjaredis: unsupported command")

	// ErrNoPubSubEndpoint indicates a pub/sub operation was attempted
	// without a configured pub/sub endpoint.
	ErrNoPubSubEndpoint = errors.New("ninjaredis: no pub/sub endpoint configured")

	// ErrPartialTransaction indicates one or more commands inside an
	// atomic batch reported a falsy result.
	ErrPartialTransaction = errors.New("ninjaredis: transaction partially failed")
)

// ConnectionError wraps a connect/configure failure against one endpoint.
type ConnectionError struct {
	// Role identifies which connection role the attempt was for.
	Role Role

	// Endpoint is the data node that failed.
	Endpoint Endpoint

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return "ninjaredis: " + string(e.Role) + " connection to " + e.Endpoint.Addr() + " failed: " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// PartialTransactionError reports an atomic batch whose commands did not
// all succeed. The batch cannot be rolled back after the fact; this error
// makes the partial application detectable.
type PartialTransactionError struct {
	// Key is the key the batch operated on.
	Key string

	// Results holds the raw per-command results in submission order.
	Results []any
}

// Error implements the error interface.
func (e *PartialTransactionError) Error() string {
	return "ninjaredis: transaction on key " + e.Key + " partially failed"
}

// Unwrap returns ErrPartialTransaction for errors.Is compatibility.
func (e *PartialTransactionError) Unwrap() error {
	return ErrPartialTransaction
}

// Logger is the minimal structured logging interface used across the
// library. It is compatible with zap.SugaredLogger.
type Logger interface {
	// Debug logs a message at debug level with key/value pairs.
	Debug(msg string, keysAndValues ...any)

	// Info logs a message at info level with key/value pairs.
	Info(msg string, keysAndValues ...any)

	// Warn logs a message at warn level with key/value pairs.
	Warn(msg string, keysAndValues ...any)

	// Error logs a message at error level with key/value pairs.
	Error(msg string, keysAndValues ...any)
}
