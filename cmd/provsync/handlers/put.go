package handlers

import (
	"context"

	"github.com/provsync/provsync/internal/config"
	"github.com/provsync/provsync/internal/coordinate"
	"github.com/provsync/provsync/internal/docstore"
)

// PutOptions carries the arguments of the put command.
type PutOptions struct {
	Key        string
	Project    string
	Database   string
	Collection string
	Value      string
	Endpoint   string
	Token      string
}

// Put handles the put command.
//
// It writes a single raw value under a state document key. An empty value
// stores the placeholder, resetting the document.
func Put(ctx context.Context, opts PutOptions) error {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultEndpoint
	}
	ref := docstore.Ref{Project: opts.Project, Database: opts.Database, Collection: opts.Collection}

	timeouts := config.LoadTimeouts()
	token, err := resolveToken(ctx, opts.Token, config.DefaultCredentialCommand, timeouts)
	if err != nil {
		return err
	}

	client := newStoreClient(endpoint, token, storeOptions(timeouts)...)
	coord := coordinate.NewCoordinator(client, ref)

	if err := coord.PublishValue(ctx, opts.Key, opts.Value); err != nil {
		return err
	}

	stored := opts.Value
	if stored == "" {
		stored = docstore.Placeholder
	}
	logger.Info("state written", "key", opts.Key, "ref", ref.String())
	return emit(stored)
}
