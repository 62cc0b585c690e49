package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "topoctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
master_name: mymaster
auth_token: secret
connect_timeout: 3s
discovery_nodes:
  - host: 10.0.0.1
    port: 26379
  - host: 10.0.0.2
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "mymaster", cfg.MasterName)
	require.Equal(t, 3*time.Second, cfg.ConnectTimeout)
	require.Len(t, cfg.DiscoveryNodes, 2)
	require.Equal(t, 26379, cfg.DiscoveryNodes[1].Port, "missing port gets the default")

	nodes := cfg.nodeConfigs()
	require.Len(t, nodes, 2)
	require.Equal(t, "10.0.0.1:26379", nodes[0].Addr())
	require.Equal(t, "secret", nodes[0].AuthToken)
	require.Equal(t, 3*time.Second, nodes[0].ConnectTimeout)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
discovery_nodes:
  - host: 10.0.0.1
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.ConnectTimeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("no discovery node", func(t *testing.T) {
		path := writeConfig(t, "master_name: mymaster\n")
		_, err := LoadConfig(path)
		require.ErrorContains(t, err, "no discovery node")
	})

	t.Run("node without host", func(t *testing.T) {
		path := writeConfig(t, `
discovery_nodes:
  - port: 26379
`)
		_, err := LoadConfig(path)
		require.ErrorContains(t, err, "no host")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "discovery_nodes: [unclosed")
		_, err := LoadConfig(path)
		require.ErrorContains(t, err, "parse config")
	})
}
