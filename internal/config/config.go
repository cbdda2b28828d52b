// Package config defines the provsync configuration model and loading.
//
// Configuration comes from a YAML file (provsync.yaml by default) plus
// PROVSYNC_* environment variables for timeouts and retry budgets. The file
// identifies the deployment's document store coordinates and the ephemeral
// provisioner instance; the environment tunes timing.
package config

import (
	"fmt"
	"strings"
)

// Config holds the deployment coordination configuration.
type Config struct {
	// Store identifies the remote document store holding deployment state.
	Store StoreConfig `yaml:"store"`

	// WorkerInstance is the name of the ephemeral provisioner instance.
	// It is included in timeout diagnostics so an operator can find the
	// machine that stopped reporting.
	WorkerInstance string `yaml:"worker_instance"`

	// TerminalStatus is the status value that marks successful completion
	// of the provisioner's work.
	TerminalStatus string `yaml:"terminal_status"`

	// NewCluster marks a first-time deployment. When true there is no prior
	// state to fetch, and readers skip the document store entirely.
	NewCluster bool `yaml:"new_cluster"`

	// CredentialCommand is the helper command that prints a bearer token,
	// relying on ambient cloud credentials.
	CredentialCommand []string `yaml:"credential_command"`

	// ObjectStorage configures bucket verification. Optional.
	ObjectStorage ObjectStorageConfig `yaml:"object_storage"`
}

// StoreConfig locates documents within the remote store.
type StoreConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Project    string `yaml:"project"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// ObjectStorageConfig configures the S3-compatible endpoint used to verify
// that published bucket names exist.
type ObjectStorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// DefaultEndpoint is the document store API base used when none is configured.
const DefaultEndpoint = "https://firestore.googleapis.com/v1"

// DefaultTerminalStatus is the completion marker written by the provisioner
// as its final act before powering off.
const DefaultTerminalStatus = "Shutting down provisioning instance"

// DefaultCredentialCommand prints an access token from ambient credentials.
var DefaultCredentialCommand = []string{"gcloud", "auth", "print-access-token", "--quiet"}

// Validate checks that the configuration identifies a usable deployment.
func (c *Config) Validate() error {
	var problems []string

	if c.Store.Project == "" {
		problems = append(problems, "store.project is required")
	}
	if c.Store.Database == "" {
		problems = append(problems, "store.database is required")
	}
	if c.Store.Collection == "" {
		problems = append(problems, "store.collection is required")
	}
	if !strings.HasPrefix(c.Store.Endpoint, "http://") && !strings.HasPrefix(c.Store.Endpoint, "https://") {
		problems = append(problems, fmt.Sprintf("store.endpoint %q must be an http(s) URL", c.Store.Endpoint))
	}
	if len(c.CredentialCommand) == 0 {
		problems = append(problems, "credential_command must not be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return nil
}
