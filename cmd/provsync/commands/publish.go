package commands

import (
	"github.com/spf13/cobra"

	"github.com/provsync/provsync/cmd/provsync/handlers"
)

// Publish returns the command for publishing a metadata list.
func Publish() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "publish <key> [value...]",
		Short: "Publish a metadata list for the next provisioning pass",
		Long: `Publish a list value under a metadata key, overwriting any previous value.
Values are stored comma-joined; publishing no values stores the placeholder,
which readers interpret as an empty list.

Examples:
  provsync publish instance-ids i-1 i-2 i-3
  provsync publish float-ips 10.0.0.8 10.0.0.9
  provsync publish float-ips`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Publish(cmd.Context(), configPath, args[0], args[1:])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: provsync.yaml)")

	return cmd
}
