package docstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provsync/provsync/internal/util/retry"
)

var testRef = Ref{Project: "acme-prod", Database: "deploy-db", Collection: "deploy-1"}

// noSleep makes the client's backoff loop run without real waiting.
func noSleep() ClientOption {
	return WithRetryOptions(retry.WithSleepFunc(func(context.Context, time.Duration) error {
		return nil
	}))
}

func newTestClient(url string, opts ...ClientOption) *HTTPClient {
	base := append([]ClientOption{WithAttempts(3), noSleep()}, opts...)
	return NewHTTPClient(url, "test-token", base...)
}

func TestGetDocument(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/projects/acme-prod/databases/deploy-db/documents/deploy-1/instance-ids", r.URL.Path)

		_, _ = w.Write([]byte(`{
			"name": "projects/acme-prod/databases/deploy-db/documents/deploy-1/instance-ids",
			"fields": {
				"instance-ids": {"stringValue": "i-1,i-2,i-3"},
				"node-count": {"integerValue": "3"},
				"fill-ratio": {"doubleValue": 0.5}
			}
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	doc, err := client.GetDocument(context.Background(), testRef, "instance-ids")
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "i-1,i-2,i-3", doc.Fields["instance-ids"])
	assert.Equal(t, "3", doc.Fields["node-count"])
	assert.Equal(t, "0.5", doc.Fields["fill-ratio"])
}

func TestGetDocument_Absent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	doc, err := client.GetDocument(context.Background(), testRef, "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
	// 404 is a clean answer, not a retryable failure.
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetDocument_ServerErrorsExhaustRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GetDocument(context.Background(), testRef, "instance-ids")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetDocument_MalformedBody(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"fields": not json`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GetDocument(context.Background(), testRef, "instance-ids")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetDocument_RecoversAfterTransientFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"fields": {"float-ips": {"stringValue": "10.0.0.9"}}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	doc, err := client.GetDocument(context.Background(), testRef, "float-ips")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "10.0.0.9", doc.Fields["float-ips"])
}

func TestNewCluster_NoNetworkCalls(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, WithNewCluster(true))

	doc, err := client.GetDocument(context.Background(), testRef, "instance-ids")
	require.NoError(t, err)
	assert.Nil(t, doc)

	value, found, err := client.LatestFieldWithPrefix(context.Background(), testRef, "last-run-status", "Jul_")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)

	assert.Equal(t, int32(0), calls.Load())
}

func TestPatchDocument_MergesExistingFields(t *testing.T) {
	t.Parallel()

	stored := map[string]wireValue{
		"last-run-status": {StringValue: strPtr("null")},
		"Jul_16_090000":   {StringValue: strPtr("Stage1")},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(wireDocument{Fields: stored})
		case http.MethodPatch:
			var body wireDocument
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			stored = body.Fields
			_ = json.NewEncoder(w).Encode(body)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.PatchDocument(context.Background(), testRef, "last-run-status",
		map[string]string{"Jul_17_123456": "Stage2"})
	require.NoError(t, err)

	// The earlier progress field and the placeholder survive the write.
	require.Contains(t, stored, "Jul_16_090000")
	require.Contains(t, stored, "last-run-status")
	require.Contains(t, stored, "Jul_17_123456")
	assert.Equal(t, "Stage2", *stored["Jul_17_123456"].StringValue)
}

func TestPatchDocument_CreatesAbsentDocument(t *testing.T) {
	t.Parallel()

	var patched wireDocument
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPatch:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
			_ = json.NewEncoder(w).Encode(patched)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.PatchDocument(context.Background(), testRef, "bucket-names",
		map[string]string{"bucket-names": "b1,b2"})
	require.NoError(t, err)

	require.Contains(t, patched.Fields, "bucket-names")
	assert.Equal(t, "b1,b2", *patched.Fields["bucket-names"].StringValue)
}

func TestLatestFieldWithPrefix_HTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"fields": {
			"Jul_16_090000": {"stringValue": "Stage1"},
			"Jul_17_123456": {"stringValue": "Shutting down provisioning instance"},
			"last-run-status": {"stringValue": "null"}
		}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	value, found, err := client.LatestFieldWithPrefix(context.Background(), testRef, "last-run-status", "Jul_")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Shutting down provisioning instance", value)
}

func TestPing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	assert.NoError(t, client.Ping(context.Background(), testRef))

	bad := NewHTTPClient(srv.URL, "wrong-token", WithAttempts(1), noSleep())
	assert.Error(t, bad.Ping(context.Background(), testRef))
}

func strPtr(s string) *string { return &s }
