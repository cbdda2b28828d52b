package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo sets the version information from main.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Version returns the version command.
func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.ErrOrStderr(), "provsync %s\n", version)
			fmt.Fprintf(cmd.ErrOrStderr(), "  commit: %s\n", commit)
			fmt.Fprintf(cmd.ErrOrStderr(), "  built:  %s\n", date)
		},
	}
}
