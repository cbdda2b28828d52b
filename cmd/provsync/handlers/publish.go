package handlers

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/provsync/provsync/internal/config"
	"github.com/provsync/provsync/internal/coordinate"
	"github.com/provsync/provsync/internal/docstore"
)

// Publish handles the publish command.
//
// It stores a list value comma-joined under a metadata key for the next
// provisioning pass to fetch. No values stores the placeholder, which
// readers interpret as an empty list.
func Publish(ctx context.Context, configPath, key string, values []string) error {
	if !slices.Contains(coordinate.MetadataKeys, key) {
		return fmt.Errorf("unknown metadata key %q (known keys: %s)",
			key, strings.Join(coordinate.MetadataKeys, ", "))
	}

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

	if err := coord.Publish(ctx, key, values); err != nil {
		return err
	}

	logger.Info("metadata published", "key", key, "values", len(values), "ref", ref.String())
	return nil
}
