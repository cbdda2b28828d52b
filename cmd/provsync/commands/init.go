package commands

import (
	"github.com/spf13/cobra"

	"github.com/provsync/provsync/cmd/provsync/handlers"
)

// Init returns the command that creates placeholder state documents.
//
// The infrastructure pass runs this before the provisioner instance boots,
// so every reader can rely on each metadata document existing.
func Init() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create placeholder state documents",
		Long: `Create every metadata document with the placeholder value "null",
skipping documents that already exist.

Run once per deployment before the provisioner instance boots. Readers treat
a missing document as a fatal setup error, so this step must complete before
any fetch.

Example:
  provsync init -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.InitState(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: provsync.yaml)")

	return cmd
}
