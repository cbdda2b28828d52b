package commands

import (
	"github.com/spf13/cobra"

	"github.com/provsync/provsync/cmd/provsync/handlers"
)

// PutStatus returns the command the provisioner uses to report progress.
func PutStatus() *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "put-status <project> <database> <collection> <status> [token]",
		Short: "Record a provisioner progress message",
		Long: `Record a progress message under a month-bucketed timestamp field in the
last-run-status document. Earlier progress fields are preserved.

The orchestrator's wait command reads these fields back, picking the latest
entry for the current month.

Examples:
  provsync put-status acme-prod deploy-db deploy-1 "Forming quorum"
  provsync put-status acme-prod deploy-db deploy-1 "Shutting down provisioning instance"`,
		Args: cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := handlers.PutStatusOptions{
				Project:    args[0],
				Database:   args[1],
				Collection: args[2],
				Status:     args[3],
				Endpoint:   endpoint,
			}
			if len(args) > 4 {
				opts.Token = args[4]
			}
			return handlers.PutStatus(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Document store API base URL (default: Firestore)")

	return cmd
}
