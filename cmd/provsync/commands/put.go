package commands

import (
	"github.com/spf13/cobra"

	"github.com/provsync/provsync/cmd/provsync/handlers"
)

// Put returns the command for writing a single state document value.
func Put() *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "put <key> <project> <database> <collection> <value> [token]",
		Short: "Write a state document value",
		Long: `Write a single state document value, overwriting any previous value.

Pass an empty value or "null" to reset the document to its placeholder.

Examples:
  provsync put instance-ids acme-prod deploy-db deploy-1 "i-1,i-2,i-3"
  provsync put new-cluster acme-prod deploy-db deploy-1 false`,
		Args: cobra.RangeArgs(5, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := handlers.PutOptions{
				Key:        args[0],
				Project:    args[1],
				Database:   args[2],
				Collection: args[3],
				Value:      args[4],
				Endpoint:   endpoint,
			}
			if len(args) > 5 {
				opts.Token = args[5]
			}
			return handlers.Put(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Document store API base URL (default: Firestore)")

	return cmd
}
