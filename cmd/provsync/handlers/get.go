package handlers

import (
	"context"

	"github.com/provsync/provsync/internal/config"
	"github.com/provsync/provsync/internal/coordinate"
	"github.com/provsync/provsync/internal/docstore"
)

// GetOptions carries the arguments of the get command.
type GetOptions struct {
	Key        string
	Project    string
	Database   string
	Collection string
	Endpoint   string
	Token      string
	NewCluster bool
}

// Get handles the get command.
//
// It reads a single state document and prints its value as one JSON line on
// stdout. A first-time deployment (NewCluster) returns the placeholder
// without touching the store or acquiring a token.
func Get(ctx context.Context, opts GetOptions) error {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultEndpoint
	}
	ref := docstore.Ref{Project: opts.Project, Database: opts.Database, Collection: opts.Collection}

	if opts.NewCluster {
		logger.V(1).Info("new cluster, skipping store read", "key", opts.Key)
		return emit(docstore.Placeholder)
	}

	timeouts := config.LoadTimeouts()
	token, err := resolveToken(ctx, opts.Token, config.DefaultCredentialCommand, timeouts)
	if err != nil {
		return err
	}

	client := newStoreClient(endpoint, token, storeOptions(timeouts)...)
	coord := coordinate.NewCoordinator(client, ref)

	value, err := coord.FetchValue(ctx, opts.Key)
	if err != nil {
		return err
	}

	logger.Info("state read", "key", opts.Key, "ref", ref.String())
	return emit(value)
}
