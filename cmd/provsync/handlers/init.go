package handlers

import (
	"context"

	"github.com/provsync/provsync/internal/config"
	"github.com/provsync/provsync/internal/coordinate"
	"github.com/provsync/provsync/internal/docstore"
)

// InitState handles the init command.
//
// It creates every metadata document with the placeholder value, skipping
// documents that already exist. The infrastructure pass runs this before
// the provisioner instance boots so readers can rely on each document
// existing.
func InitState(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	timeouts := config.LoadTimeouts()

	token, err := resolveToken(ctx, "", cfg.CredentialCommand, timeouts)
	if err != nil {
		return err
	}

	ref := docstore.Ref{
		Project:    cfg.Store.Project,
		Database:   cfg.Store.Database,
		Collection: cfg.Store.Collection,
	}
	client := newStoreClient(cfg.Store.Endpoint, token, storeOptions(timeouts)...)
	coord := coordinate.NewCoordinator(client, ref)

	if err := coord.InitPlaceholders(ctx); err != nil {
		return err
	}

	logger.Info("placeholders ready", "ref", ref.String(), "documents", len(coordinate.MetadataKeys))
	return nil
}
