package commands

import (
	"github.com/spf13/cobra"

	"github.com/provsync/provsync/cmd/provsync/handlers"
)

// Get returns the command for reading a single state document value.
//
// The positional contract is fixed: orchestration tooling invokes this as a
// helper process and parses exactly one line of JSON from stdout.
//
// Arguments:
//
//	<key>          document (and field) name, e.g. instance-ids
//	<project>      document store project
//	<database>     database name
//	<collection>   collection name
//	[token]        bearer token; acquired from ambient credentials if omitted
//	[new_cluster]  "true" skips the store entirely (first deployment)
func Get() *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "get <key> <project> <database> <collection> [token] [new_cluster]",
		Short: "Read a state document value",
		Long: `Read a single state document value and print it as JSON.

On success exactly one line is written to stdout:

  {"value": "<string>"}

A value of "null" means the document exists but no pass has published a real
value yet. A document that does not exist at all is a fatal error: the setup
step that creates placeholders did not run.

Examples:
  # Read published instance IDs
  provsync get instance-ids acme-prod deploy-db deploy-1

  # First deployment: no prior state, returns {"value": "null"} immediately
  provsync get instance-ids acme-prod deploy-db deploy-1 "" true`,
		Args: cobra.RangeArgs(4, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := handlers.GetOptions{
				Key:        args[0],
				Project:    args[1],
				Database:   args[2],
				Collection: args[3],
				Endpoint:   endpoint,
			}
			if len(args) > 4 {
				opts.Token = args[4]
			}
			if len(args) > 5 {
				opts.NewCluster = args[5] == "true"
			}
			return handlers.Get(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Document store API base URL (default: Firestore)")

	return cmd
}
