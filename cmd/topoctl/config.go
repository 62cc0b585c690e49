package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/giantninja/ninja-redis/discovery"
)

// Config is the topoctl YAML configuration.
type Config struct {
	// MasterName is the replication set to operate on.
	MasterName string `yaml:"master_name"`

	// AuthToken authenticates against the discovery nodes.
	AuthToken string `yaml:"auth_token"`

	// ConnectTimeout bounds each discovery-node dial.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// DiscoveryNodes lists the sentinel nodes to query.
	DiscoveryNodes []NodeConfig `yaml:"discovery_nodes"`
}

// NodeConfig is one discovery node entry.
type NodeConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoadConfig reads and validates the YAML configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.DiscoveryNodes) == 0 {
		return nil, errors.New("config lists no discovery node")
	}
	for i := range cfg.DiscoveryNodes {
		if cfg.DiscoveryNodes[i].Host == "" {
			return nil, fmt.Errorf("discovery node %d has no host", i)
		}
		if cfg.DiscoveryNodes[i].Port == 0 {
			cfg.DiscoveryNodes[i].Port = 26379
		}
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 2 * time.Second
	}

	return cfg, nil
}

// nodeConfigs converts the config entries to discovery node configs.
func (c *Config) nodeConfigs() []discovery.NodeConfig {
	nodes := make([]discovery.NodeConfig, 0, len(c.DiscoveryNodes))
	for _, n := range c.DiscoveryNodes {
		nodes = append(nodes, discovery.NodeConfig{
			Host:           n.Host,
			Port:           n.Port,
			AuthToken:      c.AuthToken,
			ConnectTimeout: c.ConnectTimeout,
		})
	}

	return nodes
}
