package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/provsync/provsync/internal/util/retry"
)

// HTTPClient implements Client against the document store REST API.
type HTTPClient struct {
	base       string
	token      string
	httpClient *http.Client
	newCluster bool

	attempts    int
	backoffBase time.Duration
	jitterMax   time.Duration
	retryOpts   []retry.Option
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// NewHTTPClient creates a client for the store rooted at base (e.g.
// "https://firestore.googleapis.com/v1") authenticating with the bearer token.
func NewHTTPClient(base, token string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		base:        base,
		token:       token,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		attempts:    5,
		backoffBase: 1 * time.Second,
		jitterMax:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithCallTimeout sets the per-request timeout.
func WithCallTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = d
	}
}

// WithNewCluster marks a first-time deployment. Reads short-circuit to
// "absent" without touching the network, since no prior state can exist.
func WithNewCluster(newCluster bool) ClientOption {
	return func(c *HTTPClient) {
		c.newCluster = newCluster
	}
}

// WithAttempts sets the per-request retry budget.
func WithAttempts(n int) ClientOption {
	return func(c *HTTPClient) {
		c.attempts = n
	}
}

// WithBackoff sets the initial backoff delay and jitter bound.
func WithBackoff(base, jitterMax time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.backoffBase = base
		c.jitterMax = jitterMax
	}
}

// WithRetryOptions appends extra retry options (tests inject sleep here).
func WithRetryOptions(opts ...retry.Option) ClientOption {
	return func(c *HTTPClient) {
		c.retryOpts = append(c.retryOpts, opts...)
	}
}

// wire types for the store's document envelope. Only the value kinds the
// deployment actually writes or reads back are mapped.
type wireValue struct {
	StringValue  *string  `json:"stringValue,omitempty"`
	IntegerValue *string  `json:"integerValue,omitempty"`
	DoubleValue  *float64 `json:"doubleValue,omitempty"`
}

type wireDocument struct {
	Name   string               `json:"name,omitempty"`
	Fields map[string]wireValue `json:"fields,omitempty"`
}

func (w *wireDocument) decode() *Document {
	doc := &Document{Name: w.Name, Fields: make(map[string]string, len(w.Fields))}
	for name, value := range w.Fields {
		switch {
		case value.StringValue != nil:
			doc.Fields[name] = *value.StringValue
		case value.IntegerValue != nil:
			doc.Fields[name] = *value.IntegerValue
		case value.DoubleValue != nil:
			doc.Fields[name] = fmt.Sprintf("%g", *value.DoubleValue)
		}
	}
	return doc
}

func encodeFields(fields map[string]string) *wireDocument {
	w := &wireDocument{Fields: make(map[string]wireValue, len(fields))}
	for name, value := range fields {
		v := value
		w.Fields[name] = wireValue{StringValue: &v}
	}
	return w
}

// GetDocument implements Client.
func (c *HTTPClient) GetDocument(ctx context.Context, ref Ref, id string) (*Document, error) {
	if c.newCluster {
		return nil, nil
	}

	var doc *Document
	err := c.withRetry(ctx, func() error {
		w, found, err := c.doGet(ctx, c.documentURL(ref, id))
		if err != nil {
			return err
		}
		if !found {
			doc = nil
			return nil
		}
		doc = w.decode()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// PatchDocument implements Client. The store's PATCH replaces the whole
// field map, so existing fields are read first and carried over.
func (c *HTTPClient) PatchDocument(ctx context.Context, ref Ref, id string, fields map[string]string) error {
	merged := make(map[string]string)

	existing, err := c.getForMerge(ctx, ref, id)
	if err != nil {
		return err
	}
	if existing != nil {
		for name, value := range existing.Fields {
			merged[name] = value
		}
	}
	for name, value := range fields {
		merged[name] = value
	}

	body, err := json.Marshal(encodeFields(merged))
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", id, err)
	}

	return c.withRetry(ctx, func() error {
		return c.doPatch(ctx, c.documentURL(ref, id), body)
	})
}

// getForMerge reads current fields before a write. The new-cluster fast path
// does not apply here: a writer must always see the latest stored state.
func (c *HTTPClient) getForMerge(ctx context.Context, ref Ref, id string) (*Document, error) {
	var doc *Document
	err := c.withRetry(ctx, func() error {
		w, found, err := c.doGet(ctx, c.documentURL(ref, id))
		if err != nil {
			return err
		}
		if found {
			doc = w.decode()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LatestFieldWithPrefix implements Client.
func (c *HTTPClient) LatestFieldWithPrefix(ctx context.Context, ref Ref, id, prefix string) (string, bool, error) {
	if c.newCluster {
		return "", false, nil
	}

	doc, err := c.GetDocument(ctx, ref, id)
	if err != nil {
		return "", false, err
	}
	if doc == nil {
		return "", false, nil
	}

	value, found := latestWithPrefix(doc.Fields, prefix)
	return value, found, nil
}

// Ping performs a single authenticated read against the collection and
// reports whether the store answered 200. Used for token validation; the
// caller owns any retry policy.
func (c *HTTPClient) Ping(ctx context.Context, ref Ref) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+ref.Path(), nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}

func (c *HTTPClient) documentURL(ref Ref, id string) string {
	return c.base + "/" + ref.Path() + "/" + id
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
}

// doGet performs one GET attempt. A 404 is reported as (nil, false, nil):
// absent documents are an expected state for this store.
func (c *HTTPClient) doGet(ctx context.Context, url string) (*wireDocument, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, retry.Fatal(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, readStatusError(resp)
	}

	var w wireDocument
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return nil, false, &decodeError{err: err}
	}
	return &w, true, nil
}

// doPatch performs one PATCH attempt.
func (c *HTTPClient) doPatch(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return retry.Fatal(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readStatusError(resp)
	}
	return nil
}

// withRetry runs the attempt under the shared backoff schedule and maps
// budget exhaustion to the package error taxonomy.
func (c *HTTPClient) withRetry(ctx context.Context, attempt func() error) error {
	var lastErr error
	wrapped := func() error {
		err := attempt()
		if err != nil {
			lastErr = err
		}
		return err
	}

	opts := append([]retry.Option{
		retry.WithMaxRetries(c.attempts - 1),
		retry.WithInitialDelay(c.backoffBase),
		retry.WithJitterMax(c.jitterMax),
	}, c.retryOpts...)

	if err := retry.WithExponentialBackoff(ctx, wrapped, opts...); err != nil {
		var de *decodeError
		if errors.As(lastErr, &de) {
			return fmt.Errorf("%w: %v", ErrMalformed, lastErr)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func readStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(body))}
}
