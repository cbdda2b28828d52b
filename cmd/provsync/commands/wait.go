package commands

import (
	"github.com/spf13/cobra"

	"github.com/provsync/provsync/cmd/provsync/handlers"
)

// Wait returns the command that blocks until the provisioner finishes.
func Wait() *cobra.Command {
	var configPath string
	var metricsListen string

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait for the provisioner to report completion",
		Long: `Block until the ephemeral provisioner instance writes its terminal status,
or the wait ceiling elapses.

The status document is polled at a fixed interval. While only placeholder
values are observed the wait is unbounded (the provisioner is still
booting); once real progress appears, the ceiling applies. On timeout the
error names the exact document coordinates and the provisioner instance so
the deployment can be inspected and resumed manually.

With --metrics-listen the wait exposes prometheus metrics on /metrics for
the duration.

Examples:
  provsync wait
  provsync wait -c production.yaml --metrics-listen :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Wait(cmd.Context(), handlers.WaitOptions{
				ConfigPath:    configPath,
				MetricsListen: metricsListen,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: provsync.yaml)")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Expose prometheus metrics on this address while waiting")

	return cmd
}
