package auth

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ExecSource obtains tokens by running a credential helper command that
// prints the token on stdout, e.g. "gcloud auth print-access-token --quiet".
type ExecSource struct {
	Command []string
}

// NewExecSource creates a source running the given command line.
func NewExecSource(command []string) *ExecSource {
	return &ExecSource{Command: command}
}

// Token implements TokenSource.
func (s *ExecSource) Token(ctx context.Context) (string, error) {
	if len(s.Command) == 0 {
		return "", fmt.Errorf("no credential command configured")
	}

	// #nosec G204 -- the command comes from operator-owned configuration.
	cmd := exec.CommandContext(ctx, s.Command[0], s.Command[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("credential helper failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("credential helper failed: %w", err)
	}

	return stdout.String(), nil
}
