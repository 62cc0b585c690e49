package ninjaredis

import (
	"time"

	redisadapter "github.com/giantninja/ninja-redis/adapter/redis"
	"github.com/giantninja/ninja-redis/discovery"
	"github.com/giantninja/ninja-redis/internal/logging"
	"github.com/giantninja/ninja-redis/internal/metrics"
	"github.com/giantninja/ninja-redis/internal/random"
	"github.com/giantninja/ninja-redis/types"
)

// Config holds the process-lifetime configuration of a Client.
//
// All fields are supplied once at construction and never mutated.
type Config struct {
	// DiscoveryNodes is the set of discovery (sentinel) nodes to query
	// for topology. At least one is required.
	DiscoveryNodes []discovery.NodeConfig

	// MasterName is the replication set name registered with discovery.
	MasterName string

	// Password authenticates data-node sessions. Empty disables auth.
	Password string

	// DB is the logical database index selected on every session.
	DB int

	// KeyPrefix is the namespace prepended to all keys, isolating this
	// application from others sharing the store.
	KeyPrefix string

	// ConnectTimeout bounds every dial attempt (discovery and data nodes).
	ConnectTimeout time.Duration

	// ReadTimeout bounds each command round trip on data-node sessions.
	ReadTimeout time.Duration

	// PrimaryOnly disables replica reads; every read targets the primary.
	PrimaryOnly bool

	// PubSub is the dedicated publish/subscribe endpoint. It is a fixed
	// configured address, not discovered. Zero value disables pub/sub.
	PubSub types.Endpoint
}

// sessionConfig derives the per-session adapter configuration.
func (c Config) sessionConfig() redisadapter.Config {
	return redisadapter.Config{
		Password:       c.Password,
		DB:             c.DB,
		KeyPrefix:      c.KeyPrefix,
		ConnectTimeout: c.ConnectTimeout,
		ReadTimeout:    c.ReadTimeout,
	}
}

// options holds the pluggable collaborators of a Client.
type options struct {
	logger       types.Logger
	metrics      types.MetricsCollector
	rand         types.Rand
	readStrategy ReadStrategy
	connector    redisadapter.Connector
	dialer       discovery.Dialer
}

// defaultOptions returns options with nop/production defaults.
func defaultOptions() *options {
	return &options{
		logger:    logging.NewNopLogger(),
		metrics:   metrics.NewNopMetrics(),
		rand:      random.New(),
		connector: redisadapter.NewConnector(),
		dialer:    discovery.DefaultDialer(),
	}
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// The logger interface is compatible with zap.SugaredLogger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	logger, _ := zap.NewProduction()
//	client, _ := ninjaredis.New(cfg,
//	    ninjaredis.WithLogger(logger.Sugar()),
//	)
func WithLogger(logger types.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
func WithMetrics(collector types.MetricsCollector) Option {
	return func(o *options) {
		o.metrics = collector
	}
}

// WithRand sets the randomness source used for discovery-node shuffling,
// replica shuffling and probabilistic read routing.
//
// The default uses math/rand/v2. Tests substitute a deterministic source.
//
// Parameters:
//   - r: The randomness source
//
// Returns:
//   - Option: Configuration option
func WithRand(r types.Rand) Option {
	return func(o *options) {
		o.rand = r
	}
}

// WithReadStrategy overrides the read-routing strategy.
//
// The default follows Config.PrimaryOnly: policy.NewPrimaryOnlyRead when
// set, policy.NewProbabilisticRead otherwise.
//
// Parameters:
//   - strategy: The read strategy to use
//
// Returns:
//   - Option: Configuration option
func WithReadStrategy(strategy ReadStrategy) Option {
	return func(o *options) {
		o.readStrategy = strategy
	}
}

// WithConnector sets the data-node session connector.
//
// The default dials real nodes through go-redis; tests substitute a fake.
//
// Parameters:
//   - connector: The connector implementation
//
// Returns:
//   - Option: Configuration option
func WithConnector(connector redisadapter.Connector) Option {
	return func(o *options) {
		o.connector = connector
	}
}

// WithDiscoveryDialer sets the dialer used for discovery-node sessions.
//
// The default opens real sentinel connections; tests substitute a fake.
//
// Parameters:
//   - dialer: The dialer implementation
//
// Returns:
//   - Option: Configuration option
func WithDiscoveryDialer(dialer discovery.Dialer) Option {
	return func(o *options) {
		o.dialer = dialer
	}
}
