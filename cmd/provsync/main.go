// Package main is the entry point for the provsync CLI.
//
// provsync coordinates storage-cluster provisioning passes through a remote
// document store: it publishes and fetches deployment metadata, records
// provisioner progress, and waits for the ephemeral provisioner instance to
// report completion.
//
// Commands: token, get, put, put-status, init, publish, fetch, wait.
//
// Standard output is reserved for single-line machine-readable payloads;
// all diagnostics go to standard error. For detailed usage information, run:
//
//	provsync --help
package main

import (
	"fmt"
	"os"

	"github.com/provsync/provsync/cmd/provsync/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
