package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantninja/ninja-redis/discovery"
	"github.com/giantninja/ninja-redis/topology"
)

// withClient loads the configuration, selects a reachable discovery node
// through the pool and hands both to fn. The pool keeps the selected node
// sticky, so commands that resolve through it reuse the same node.
func withClient(fn func(ctx context.Context, cfg *Config, pool *discovery.Pool, client *discovery.Client) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		if masterName != "" {
			cfg.MasterName = masterName
		}

		clients := make([]*discovery.Client, 0, len(cfg.DiscoveryNodes))
		for _, node := range cfg.nodeConfigs() {
			clients = append(clients, discovery.NewClient(node))
		}
		pool := discovery.NewPool(clients)
		defer pool.Close()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		client, err := pool.Get(ctx)
		if err != nil {
			return err
		}

		return fn(ctx, cfg, pool, client)
	}
}

// requireMaster fails commands that need a replication set name.
func requireMaster(cfg *Config) error {
	if cfg.MasterName == "" {
		return errors.New("no replication set name: set master_name in the config or pass --master")
	}

	return nil
}

func topologyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topology",
		Short: "Resolve and print the live primary/replica topology",
		RunE: withClient(func(ctx context.Context, cfg *Config, pool *discovery.Pool, _ *discovery.Client) error {
			if err := requireMaster(cfg); err != nil {
				return err
			}

			resolver := topology.NewResolver(pool)

			topo, err := resolver.Resolve(ctx, cfg.MasterName)
			if err != nil {
				return err
			}

			fmt.Printf("master:  %s\n", cfg.MasterName)
			fmt.Printf("primary: %s\n", topo.Primary.Addr())
			if len(topo.Replicas) == 0 {
				fmt.Println("replicas: none")
			} else {
				fmt.Printf("replicas (%d):\n", len(topo.Replicas))
				for _, replica := range topo.Replicas {
					fmt.Printf("  %s  [%s]\n", replica.Addr(), replica.Flags)
				}
			}
			fmt.Printf("source:  %s\n", resolver.Source().Addr)

			return nil
		}),
	}
}

func mastersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "masters",
		Short: "List every replication set the discovery tier monitors",
		RunE: withClient(func(ctx context.Context, _ *Config, _ *discovery.Pool, client *discovery.Client) error {
			records := client.Masters(ctx)
			if len(records) == 0 {
				return errors.New("discovery node returned no monitored set")
			}

			for _, rec := range records {
				fmt.Printf("%s  %s:%s  quorum=%s  replicas=%s  flags=%s\n",
					rec.Str("name"),
					rec.Str("ip"), rec.Str("port"),
					rec.Str("quorum"),
					rec.Str("num-slaves"),
					rec.Str("flags"),
				)
			}

			return nil
		}),
	}
}

func failoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "failover",
		Short: "Trigger a manual failover of the replication set",
		RunE: withClient(func(ctx context.Context, cfg *Config, _ *discovery.Pool, client *discovery.Client) error {
			if err := requireMaster(cfg); err != nil {
				return err
			}

			if !client.Failover(ctx, cfg.MasterName) {
				return fmt.Errorf("discovery node %s rejected the failover", client.Addr())
			}

			fmt.Printf("failover of %s started via %s\n", cfg.MasterName, client.Addr())

			return nil
		}),
	}
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [pattern]",
		Short: "Reset monitored sets matching the pattern (default: the configured set)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}

			return withClient(func(ctx context.Context, cfg *Config, _ *discovery.Pool, client *discovery.Client) error {
				if pattern == "" {
					if err := requireMaster(cfg); err != nil {
						return err
					}
					pattern = cfg.MasterName
				}

				n := client.Reset(ctx, pattern)
				if n == 0 {
					return fmt.Errorf("no monitored set matched %q on %s", pattern, client.Addr())
				}

				fmt.Printf("reset %d set(s) matching %q via %s\n", n, pattern, client.Addr())

				return nil
			})(cmd, args)
		},
	}
}

func checkQuorumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-quorum",
		Short: "Verify the discovery tier can authorize a failover",
		RunE: withClient(func(ctx context.Context, cfg *Config, _ *discovery.Pool, client *discovery.Client) error {
			if err := requireMaster(cfg); err != nil {
				return err
			}

			report, ok := client.CheckQuorum(ctx, cfg.MasterName)
			if !ok {
				return fmt.Errorf("quorum check for %s failed on %s", cfg.MasterName, client.Addr())
			}

			fmt.Println(report)

			return nil
		}),
	}
}

func flushConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flushconfig",
		Short: "Force the discovery node to rewrite its on-disk state",
		RunE: withClient(func(ctx context.Context, _ *Config, _ *discovery.Pool, client *discovery.Client) error {
			if !client.FlushConfig(ctx) {
				return fmt.Errorf("flushconfig failed on %s", client.Addr())
			}

			fmt.Printf("configuration flushed on %s\n", client.Addr())

			return nil
		}),
	}
}
