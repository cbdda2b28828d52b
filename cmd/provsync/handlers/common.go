// Package handlers implements the business logic for CLI commands.
//
// Handler functions receive parsed arguments from the commands package and
// coordinate the internal packages to do the work. Stdout is reserved for
// the single JSON result line that orchestration tooling parses; every
// diagnostic goes to stderr.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr/funcr"

	"github.com/provsync/provsync/internal/auth"
	"github.com/provsync/provsync/internal/config"
	"github.com/provsync/provsync/internal/docstore"
)

// resultWriter is where the JSON result line goes. Tests replace it to
// capture output; production always writes to os.Stdout.
var resultWriter io.Writer = os.Stdout

// logger writes structured diagnostics to stderr, keeping stdout clean for
// the result line.
var logger = funcr.New(func(prefix, args string) {
	if prefix != "" {
		fmt.Fprintln(os.Stderr, prefix, args)
		return
	}
	fmt.Fprintln(os.Stderr, args)
}, funcr.Options{})

// Factory function variables - can be replaced in tests.
var (
	// newStoreClient builds the document store client.
	newStoreClient = func(endpoint, token string, opts ...docstore.ClientOption) docstore.Client {
		return docstore.NewHTTPClient(endpoint, token, opts...)
	}

	// newTokenSource builds the credential helper source.
	newTokenSource = func(command []string) auth.TokenSource {
		return auth.NewExecSource(command)
	}

	// pingStore makes one authenticated probe against the store, used to
	// validate a freshly acquired token.
	pingStore = func(ctx context.Context, endpoint, token string, ref docstore.Ref, timeouts *config.Timeouts) error {
		client := docstore.NewHTTPClient(endpoint, token,
			docstore.WithCallTimeout(timeouts.CallTimeout))
		return client.Ping(ctx, ref)
	}
)

type result struct {
	Value string `json:"value"`
}

// emit writes the single JSON result line to stdout.
func emit(value string) error {
	data, err := json.Marshal(result{Value: value})
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if _, err := fmt.Fprintln(resultWriter, string(data)); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

// loadConfig resolves and loads the configuration file.
func loadConfig(configPath string) (*config.Config, error) {
	path, err := config.FindConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	return config.LoadFile(path)
}

// newProvider builds a token provider with the configured retry budgets.
func newProvider(command []string, timeouts *config.Timeouts) *auth.Provider {
	return auth.NewProvider(newTokenSource(command),
		auth.WithAttempts(timeouts.TokenAttempts),
		auth.WithInterval(timeouts.TokenRetryInterval),
		auth.WithValidateAttempts(timeouts.ValidateAttempts),
		auth.WithBackoff(timeouts.BackoffBase, timeouts.BackoffJitterMax),
	)
}

// resolveToken returns the explicit token if one was passed, otherwise
// acquires one through the credential helper.
func resolveToken(ctx context.Context, explicit string, command []string, timeouts *config.Timeouts) (string, error) {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed, nil
	}
	return newProvider(command, timeouts).Token(ctx)
}

// storeOptions maps the timing configuration onto client options.
func storeOptions(timeouts *config.Timeouts) []docstore.ClientOption {
	return []docstore.ClientOption{
		docstore.WithCallTimeout(timeouts.CallTimeout),
		docstore.WithAttempts(timeouts.StoreAttempts),
		docstore.WithBackoff(timeouts.BackoffBase, timeouts.BackoffJitterMax),
	}
}
