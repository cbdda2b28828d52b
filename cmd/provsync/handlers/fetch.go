package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/provsync/provsync/internal/config"
	"github.com/provsync/provsync/internal/coordinate"
	"github.com/provsync/provsync/internal/docstore"
	"github.com/provsync/provsync/internal/platform/s3"
)

// bucketVerifier checks published bucket names against object storage.
type bucketVerifier interface {
	VerifyBuckets(ctx context.Context, bucketNames []string) ([]string, error)
}

// newBucketVerifier creates the object storage verifier - can be replaced in tests.
var newBucketVerifier = func(cfg config.ObjectStorageConfig) (bucketVerifier, error) {
	return s3.NewVerifier(cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey)
}

// Fetch handles the fetch command.
//
// It reads the value published under a metadata key and prints it as one
// JSON line on stdout. On a first-time deployment the placeholder is
// returned without touching the store. With verifyBuckets set (bucket-names
// only) each fetched bucket is checked against the configured object
// storage endpoint.
func Fetch(ctx context.Context, configPath, key string, verifyBuckets bool) error {
	if verifyBuckets && key != coordinate.KeyBucketNames {
		return fmt.Errorf("--verify-buckets only applies to the %s key", coordinate.KeyBucketNames)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	timeouts := config.LoadTimeouts()

	ref := docstore.Ref{
		Project:    cfg.Store.Project,
		Database:   cfg.Store.Database,
		Collection: cfg.Store.Collection,
	}

	var value string
	if cfg.NewCluster {
		logger.V(1).Info("new cluster, skipping store read", "key", key)
		value = docstore.Placeholder
	} else {
		token, err := resolveToken(ctx, "", cfg.CredentialCommand, timeouts)
		if err != nil {
			return err
		}
		client := newStoreClient(cfg.Store.Endpoint, token, storeOptions(timeouts)...)
		coord := coordinate.NewCoordinator(client, ref)

		value, err = coord.FetchValue(ctx, key)
		if err != nil {
			return err
		}
	}

	if verifyBuckets && !docstore.IsPlaceholder(value) {
		names := strings.Split(value, ",")
		verifier, err := newBucketVerifier(cfg.ObjectStorage)
		if err != nil {
			return fmt.Errorf("creating object storage client: %w", err)
		}
		missing, err := verifier.VerifyBuckets(ctx, names)
		if err != nil {
			return fmt.Errorf("verifying buckets: %w", err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("published buckets missing from object storage: %s", strings.Join(missing, ", "))
		}
		logger.Info("buckets verified", "count", len(names))
	}

	logger.Info("metadata fetched", "key", key, "ref", ref.String())
	return emit(value)
}
