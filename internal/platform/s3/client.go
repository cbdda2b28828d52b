// Package s3 verifies published bucket state against S3-compatible object storage.
//
// The infrastructure pass publishes the persistent-storage bucket names it
// created; before a later pass wires those buckets into the cluster it
// confirms they actually exist, catching drift between published state and
// the real storage backend.
package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// HeadBucketAPI is the slice of the S3 API the verifier needs.
type HeadBucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Verifier checks bucket existence against an S3-compatible endpoint.
type Verifier struct {
	api HeadBucketAPI
}

// NewVerifier creates a Verifier for the given endpoint and credentials.
func NewVerifier(endpoint, region, accessKey, secretKey string) (*Verifier, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Verifier{api: client}, nil
}

// NewVerifierWithAPI creates a Verifier over an existing API client.
func NewVerifierWithAPI(api HeadBucketAPI) *Verifier {
	return &Verifier{api: api}
}

// BucketExists checks if a bucket exists and is accessible.
func (v *Verifier) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	_, err := v.api.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	return true, nil
}

// VerifyBuckets checks every name and returns the subset that does not
// exist. An empty return means the published state matches storage.
func (v *Verifier) VerifyBuckets(ctx context.Context, bucketNames []string) ([]string, error) {
	var missing []string
	for _, name := range bucketNames {
		exists, err := v.BucketExists(ctx, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// isNotFoundError checks if the error is a not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	// Check for typed S3 errors first
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	// Fall back to API error code checking for S3-compatible services
	// that may not return the exact SDK error types
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket"
	}

	return false
}
