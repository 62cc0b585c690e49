// topoctl is an operator tool for the discovery (sentinel) tier behind a
// ninja-redis deployment.
//
// It resolves and prints live topology, triggers manual failovers and
// runs discovery-node maintenance commands, all through the same
// discovery client the library itself uses.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath string
	masterName string
	timeout    time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "topoctl",
		Short: "topoctl - discovery tier operations for ninja-redis",
		Long: `topoctl inspects and manages the sentinel discovery tier behind a
ninja-redis deployment: resolve live topology, trigger manual failovers
and run discovery-node maintenance commands.`,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "topoctl.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&masterName, "master", "", "Replication set name (overrides the config file)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "Overall command timeout")

	rootCmd.AddCommand(topologyCmd())
	rootCmd.AddCommand(mastersCmd())
	rootCmd.AddCommand(failoverCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(checkQuorumCmd())
	rootCmd.AddCommand(flushConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
