package commands

import (
	"github.com/spf13/cobra"

	"github.com/provsync/provsync/cmd/provsync/handlers"
)

// Token returns the command for acquiring a bearer token.
func Token() *cobra.Command {
	var configPath string
	var validate bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Acquire a bearer token from ambient credentials",
		Long: `Acquire a bearer token by running the configured credential helper,
retrying until a usable token is obtained or the retry budget is exhausted.

With --validate the token is additionally checked with one authenticated
call against the configured document store.

The token is printed as {"value": "<token>"} on stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.AcquireToken(cmd.Context(), configPath, validate)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: provsync.yaml)")
	cmd.Flags().BoolVar(&validate, "validate", false, "Validate the token against the document store")

	return cmd
}
