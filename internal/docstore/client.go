// Package docstore provides a client for the deployment's remote document store.
//
// Deployment state lives in named documents (flat field maps) grouped into a
// collection within a database. The store is accessed over HTTPS with bearer
// token auth. Only string-valued fields are produced by this subsystem;
// numeric values written by other tooling are read back as strings.
package docstore

import (
	"context"
	"sort"
	"strings"
)

// Ref locates a collection within the remote store.
type Ref struct {
	Project    string
	Database   string
	Collection string
}

// Path returns the REST resource path for the collection, without the API base.
func (r Ref) Path() string {
	return "projects/" + r.Project + "/databases/" + r.Database + "/documents/" + r.Collection
}

func (r Ref) String() string {
	return r.Path()
}

// Document is a single named document's decoded field map.
type Document struct {
	Name   string
	Fields map[string]string
}

// Client defines read/write access to deployment state documents.
// It abstracts the remote document store API.
type Client interface {
	// GetDocument fetches a document by id. An absent document returns
	// (nil, nil); absence is an expected state, not a failure.
	GetDocument(ctx context.Context, ref Ref, id string) (*Document, error)

	// PatchDocument writes the given fields into the document, preserving
	// any existing fields not named. The document is created if absent.
	PatchDocument(ctx context.Context, ref Ref, id string, fields map[string]string) error

	// LatestFieldWithPrefix returns the value of the lexicographically
	// greatest field whose name starts with prefix and whose value is
	// non-empty and not the placeholder. The second return reports whether
	// such a field was found.
	LatestFieldWithPrefix(ctx context.Context, ref Ref, id, prefix string) (string, bool, error)
}

// Placeholder is the sentinel string standing in for "no value yet".
// Every state document is created with this value before any writer has
// real data, so readers can distinguish "not ready" from "never set up".
const Placeholder = "null"

// IsPlaceholder reports whether a raw field value means "no value yet".
func IsPlaceholder(v string) bool {
	return v == "" || v == Placeholder
}

// latestWithPrefix selects from a decoded field map per the recency rule:
// filter to names carrying the prefix and a real value, then take the
// lexicographically greatest name. Field names are month-bucketed timestamps
// (e.g. "Jul_17_123456"), so within one month greater sorts as newer.
func latestWithPrefix(fields map[string]string, prefix string) (string, bool) {
	var names []string
	for name, value := range fields {
		if strings.HasPrefix(name, prefix) && !IsPlaceholder(value) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return fields[names[len(names)-1]], true
}
