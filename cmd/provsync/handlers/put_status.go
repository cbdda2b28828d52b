package handlers

import (
	"context"

	"github.com/provsync/provsync/internal/config"
	"github.com/provsync/provsync/internal/coordinate"
	"github.com/provsync/provsync/internal/docstore"
)

// PutStatusOptions carries the arguments of the put-status command.
type PutStatusOptions struct {
	Project    string
	Database   string
	Collection string
	Status     string
	Endpoint   string
	Token      string
}

// PutStatus handles the put-status command.
//
// The provisioner calls this to record progress under a month-bucketed
// timestamp field, preserving every earlier progress field in the document.
func PutStatus(ctx context.Context, opts PutStatusOptions) error {
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

	if err := coord.PublishStatus(ctx, opts.Status); err != nil {
		return err
	}

	logger.Info("status recorded", "status", opts.Status, "ref", ref.String())
	return emit(opts.Status)
}
