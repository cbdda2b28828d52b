// Package coordinate implements the cross-pass state exchange protocol.
//
// Two provisioning passes that share no process memory hand each other
// metadata (instance IDs, floating IPs, bucket names, tunables) through
// documents in the remote store, and an orchestrator waits on a status
// document the ephemeral provisioner overwrites as it works. Values are
// comma-joined string lists on the wire with the literal "null" standing in
// for an empty list; that sentinel never leaves this package.
package coordinate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/provsync/provsync/internal/docstore"
)

// MissingPlaceholderError reports a fetch of a key whose document does not
// exist at all. The infrastructure pass creates every placeholder before any
// reader runs, so absence is a setup ordering bug, not a transient state.
type MissingPlaceholderError struct {
	Ref docstore.Ref
	Key string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("no placeholder document for %q under %s: the setup step that creates state placeholders did not run", e.Key, e.Ref)
}

// Coordinator publishes and fetches deployment metadata documents.
type Coordinator struct {
	client     docstore.Client
	ref        docstore.Ref
	newCluster bool
	now        func() time.Time
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// NewCoordinator creates a Coordinator over the given store and collection.
func NewCoordinator(client docstore.Client, ref docstore.Ref, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		client: client,
		ref:    ref,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithNewCluster marks a first-time deployment: fetches return empty results
// without touching the store, since no prior pass can have published state.
func WithNewCluster(newCluster bool) CoordinatorOption {
	return func(c *Coordinator) {
		c.newCluster = newCluster
	}
}

// WithClock replaces the time source used for status field keys.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

// Publish writes a list value under key, overwriting any previous value.
// An empty list is stored as the placeholder so readers can tell "published
// empty" from "document never created".
func (c *Coordinator) Publish(ctx context.Context, key string, values []string) error {
	value := docstore.Placeholder
	if len(values) > 0 {
		value = strings.Join(values, ",")
	}
	return c.PublishValue(ctx, key, value)
}

// PublishValue writes a single raw value under key.
func (c *Coordinator) PublishValue(ctx context.Context, key, value string) error {
	if value == "" {
		value = docstore.Placeholder
	}
	return c.client.PatchDocument(ctx, c.ref, key, map[string]string{key: value})
}

// Fetch reads the list previously published under key. The placeholder maps
// to a nil slice. A document that does not exist at all is a fatal
// configuration error.
func (c *Coordinator) Fetch(ctx context.Context, key string) ([]string, error) {
	raw, err := c.FetchValue(ctx, key)
	if err != nil {
		return nil, err
	}
	if docstore.IsPlaceholder(raw) {
		return nil, nil
	}
	return strings.Split(raw, ","), nil
}

// FetchValue reads the raw value published under key, returning the
// placeholder when no pass has written a real value yet.
func (c *Coordinator) FetchValue(ctx context.Context, key string) (string, error) {
	if c.newCluster {
		return docstore.Placeholder, nil
	}

	doc, err := c.client.GetDocument(ctx, c.ref, key)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", &MissingPlaceholderError{Ref: c.ref, Key: key}
	}

	raw, ok := doc.Fields[key]
	if !ok {
		return docstore.Placeholder, nil
	}
	return raw, nil
}

// PublishStatus records a provisioner progress message under a
// month-bucketed field key in the status document, preserving earlier
// fields. The key format matches what the status poller filters on.
func (c *Coordinator) PublishStatus(ctx context.Context, status string) error {
	key := StatusFieldKey(c.now())
	return c.client.PatchDocument(ctx, c.ref, StatusDocument, map[string]string{key: status})
}

// InitPlaceholders creates every metadata document with the placeholder
// value, skipping documents that already exist. Run by the infrastructure
// pass before the provisioner boots.
func (c *Coordinator) InitPlaceholders(ctx context.Context) error {
	for _, key := range MetadataKeys {
		doc, err := c.client.GetDocument(ctx, c.ref, key)
		if err != nil {
			return fmt.Errorf("checking placeholder %q: %w", key, err)
		}
		if doc != nil {
			continue
		}
		if err := c.client.PatchDocument(ctx, c.ref, key, map[string]string{key: docstore.Placeholder}); err != nil {
			return fmt.Errorf("creating placeholder %q: %w", key, err)
		}
	}
	return nil
}

// StatusFieldKey builds the month-bucketed field name for a status write,
// e.g. "Jul_17_123456" for July 17th 12:34:56.
func StatusFieldKey(t time.Time) string {
	return t.Format("Jan_02_150405")
}

// MonthPrefix returns the field-name prefix for the month of t, e.g. "Jul_".
// The poller uses it to ignore progress left over from runs in earlier
// months.
func MonthPrefix(t time.Time) string {
	return t.Format("Jan") + "_"
}
