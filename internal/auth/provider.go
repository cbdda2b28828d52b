// Package auth acquires and validates bearer tokens for the document store.
//
// Tokens come from the ambient cloud credential context via a helper command
// (gcloud-style); no explicit credential is accepted. A token is minted per
// invocation and never persisted.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/provsync/provsync/internal/util/retry"
)

// ErrExhausted indicates no usable credential was obtained within the
// acquisition retry budget.
var ErrExhausted = errors.New("token acquisition exhausted")

// ErrInvalid indicates an obtained token failed validation against the
// store for the whole validation budget.
var ErrInvalid = errors.New("token failed validation")

// TokenSource produces a raw bearer token from ambient credentials.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Validator checks a token with one authenticated call to the target API.
type Validator func(ctx context.Context, token string) error

// Provider acquires a token with bounded retries and optionally validates it.
type Provider struct {
	source TokenSource

	attempts         int
	interval         time.Duration
	validateAttempts int
	backoffBase      time.Duration
	jitterMax        time.Duration
	retryOpts        []retry.Option
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// NewProvider creates a Provider reading tokens from source.
func NewProvider(source TokenSource, opts ...ProviderOption) *Provider {
	p := &Provider{
		source:           source,
		attempts:         5,
		interval:         2 * time.Second,
		validateAttempts: 3,
		backoffBase:      1 * time.Second,
		jitterMax:        2 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithAttempts sets the acquisition retry budget.
func WithAttempts(n int) ProviderOption {
	return func(p *Provider) {
		p.attempts = n
	}
}

// WithInterval sets the constant sleep between acquisition attempts.
func WithInterval(d time.Duration) ProviderOption {
	return func(p *Provider) {
		p.interval = d
	}
}

// WithValidateAttempts sets the validation retry budget.
func WithValidateAttempts(n int) ProviderOption {
	return func(p *Provider) {
		p.validateAttempts = n
	}
}

// WithBackoff sets the validation backoff base delay and jitter bound.
func WithBackoff(base, jitterMax time.Duration) ProviderOption {
	return func(p *Provider) {
		p.backoffBase = base
		p.jitterMax = jitterMax
	}
}

// WithRetryOptions appends extra retry options (tests inject sleep here).
func WithRetryOptions(opts ...retry.Option) ProviderOption {
	return func(p *Provider) {
		p.retryOpts = append(p.retryOpts, opts...)
	}
}

// Token obtains a trimmed, non-empty bearer token, retrying with a constant
// interval up to the acquisition budget. Exhaustion returns ErrExhausted.
func (p *Provider) Token(ctx context.Context) (string, error) {
	var token string

	attempt := func() error {
		raw, err := p.source.Token(ctx)
		if err != nil {
			return err
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return errors.New("credential helper returned an empty token")
		}
		token = trimmed
		return nil
	}

	err := retry.WithFixedInterval(ctx, attempt, p.attempts, p.interval, p.retryOpts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExhausted, err)
	}
	return token, nil
}

// Validate confirms the token is accepted by the store, retrying the check
// under exponential backoff with jitter. Exhaustion returns ErrInvalid.
func (p *Provider) Validate(ctx context.Context, token string, validate Validator) error {
	opts := append([]retry.Option{
		retry.WithMaxRetries(p.validateAttempts - 1),
		retry.WithInitialDelay(p.backoffBase),
		retry.WithJitterMax(p.jitterMax),
	}, p.retryOpts...)

	err := retry.WithExponentialBackoff(ctx, func() error {
		return validate(ctx, token)
	}, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
