package handlers

import (
	"context"

	"github.com/provsync/provsync/internal/config"
	"github.com/provsync/provsync/internal/docstore"
)

// AcquireToken handles the token command.
//
// It runs the configured credential helper under the acquisition retry
// budget and prints the token as one JSON line on stdout. With validate set
// the token is additionally exercised against the configured store before
// being printed.
func AcquireToken(ctx context.Context, configPath string, validate bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	timeouts := config.LoadTimeouts()

	provider := newProvider(cfg.CredentialCommand, timeouts)
	token, err := provider.Token(ctx)
	if err != nil {
		return err
	}

	if validate {
		ref := docstore.Ref{
			Project:    cfg.Store.Project,
			Database:   cfg.Store.Database,
			Collection: cfg.Store.Collection,
		}
		err := provider.Validate(ctx, token, func(ctx context.Context, tok string) error {
			return pingStore(ctx, cfg.Store.Endpoint, tok, ref, timeouts)
		})
		if err != nil {
			return err
		}
		logger.Info("token validated against store", "ref", ref.String())
	}

	return emit(token)
}
