// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the provsync CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "provsync",
		Short:         "Coordinate storage-cluster provisioning through a document store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Raw document operations (helper-process contract)
	cmd.AddCommand(Get())
	cmd.AddCommand(Put())
	cmd.AddCommand(PutStatus())
	cmd.AddCommand(Token())

	// Deployment-level operations (config-file driven)
	cmd.AddCommand(Init())
	cmd.AddCommand(Publish())
	cmd.AddCommand(Fetch())
	cmd.AddCommand(Wait())

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
