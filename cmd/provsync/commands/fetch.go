package commands

import (
	"github.com/spf13/cobra"

	"github.com/provsync/provsync/cmd/provsync/handlers"
)

// Fetch returns the command for fetching published metadata.
func Fetch() *cobra.Command {
	var configPath string
	var verifyBuckets bool

	cmd := &cobra.Command{
		Use:   "fetch <key>",
		Short: "Fetch metadata published by an earlier provisioning pass",
		Long: `Fetch the value published under a metadata key and print it as
{"value": "<string>"} on stdout. The placeholder "null" means the earlier
pass published an empty list.

With --verify-buckets (valid for the bucket-names key) each fetched bucket
is checked against the configured object storage endpoint, and missing
buckets fail the command.

Examples:
  provsync fetch instance-ids
  provsync fetch bucket-names --verify-buckets`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Fetch(cmd.Context(), configPath, args[0], verifyBuckets)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: provsync.yaml)")
	cmd.Flags().BoolVar(&verifyBuckets, "verify-buckets", false, "Verify fetched bucket names against object storage")

	return cmd
}
