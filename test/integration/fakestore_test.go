//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// fakeStore serves the Firestore-style REST surface over httptest: document
// GET and PATCH with the fields envelope, plus collection GET for probes.
// Documents live in memory keyed by their full resource path.
type fakeStore struct {
	mu        sync.Mutex
	documents map[string]map[string]string

	// failures makes the next N requests return 503, exercising retries.
	failures int

	server *httptest.Server
}

func newFakeStore() *fakeStore {
	return &fakeStore{documents: make(map[string]map[string]string)}
}

func (s *fakeStore) Start() {
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
}

func (s *fakeStore) Close() {
	if s.server != nil {
		s.server.Close()
	}
}

func (s *fakeStore) URL() string {
	return s.server.URL
}

func (s *fakeStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make(map[string]map[string]string)
	s.failures = 0
}

// FailNext makes the next n requests return 503.
func (s *fakeStore) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
}

// Seed writes a document directly, bypassing the HTTP surface.
func (s *fakeStore) Seed(path string, fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := make(map[string]string, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	s.documents[path] = doc
}

// Fields returns a copy of a document's fields, or nil when absent.
func (s *fakeStore) Fields(path string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[path]
	if !ok {
		return nil
	}
	copied := make(map[string]string, len(doc))
	for k, v := range doc {
		copied[k] = v
	}
	return copied
}

type wireValue struct {
	StringValue string `json:"stringValue"`
}

type wireDocument struct {
	Name   string               `json:"name,omitempty"`
	Fields map[string]wireValue `json:"fields"`
}

func (s *fakeStore) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		http.Error(w, `{"error": {"status": "UNAVAILABLE"}}`, http.StatusServiceUnavailable)
		return
	}
	s.mu.Unlock()

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		http.Error(w, `{"error": {"status": "UNAUTHENTICATED"}}`, http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/")

	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, path)
	case http.MethodPatch:
		s.handlePatch(w, r, path)
	default:
		http.Error(w, `{"error": {"status": "METHOD_NOT_ALLOWED"}}`, http.StatusMethodNotAllowed)
	}
}

func (s *fakeStore) handleGet(w http.ResponseWriter, path string) {
	// Collection probes (no document segment after "documents/<collection>")
	// answer 200 with an empty body for token validation.
	if s.isCollectionPath(path) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
		return
	}

	s.mu.Lock()
	doc, ok := s.documents[path]
	s.mu.Unlock()
	if !ok {
		http.Error(w, `{"error": {"status": "NOT_FOUND"}}`, http.StatusNotFound)
		return
	}

	out := wireDocument{Name: path, Fields: make(map[string]wireValue, len(doc))}
	for k, v := range doc {
		out.Fields[k] = wireValue{StringValue: v}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *fakeStore) handlePatch(w http.ResponseWriter, r *http.Request, path string) {
	var in wireDocument
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"error": {"status": "INVALID_ARGUMENT"}}`, http.StatusBadRequest)
		return
	}

	fields := make(map[string]string, len(in.Fields))
	for k, v := range in.Fields {
		fields[k] = v.StringValue
	}

	s.mu.Lock()
	s.documents[path] = fields
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(wireDocument{Name: path, Fields: in.Fields})
}

// isCollectionPath reports whether path names a collection rather than a
// document, i.e. the segment right after "documents" is the last one.
func (s *fakeStore) isCollectionPath(path string) bool {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "documents" {
			return len(segments) == i+2
		}
	}
	return false
}
