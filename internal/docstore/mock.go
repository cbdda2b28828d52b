package docstore

import "context"

// MockClient is a function-backed implementation of Client for tests.
type MockClient struct {
	GetDocumentFunc           func(ctx context.Context, ref Ref, id string) (*Document, error)
	PatchDocumentFunc         func(ctx context.Context, ref Ref, id string, fields map[string]string) error
	LatestFieldWithPrefixFunc func(ctx context.Context, ref Ref, id, prefix string) (string, bool, error)
}

func (m *MockClient) GetDocument(ctx context.Context, ref Ref, id string) (*Document, error) {
	return m.GetDocumentFunc(ctx, ref, id)
}

func (m *MockClient) PatchDocument(ctx context.Context, ref Ref, id string, fields map[string]string) error {
	return m.PatchDocumentFunc(ctx, ref, id, fields)
}

func (m *MockClient) LatestFieldWithPrefix(ctx context.Context, ref Ref, id, prefix string) (string, bool, error) {
	return m.LatestFieldWithPrefixFunc(ctx, ref, id, prefix)
}

// MemoryClient is an in-memory Client used by integration-style tests.
type MemoryClient struct {
	Documents map[string]map[string]string
}

// NewMemoryClient creates an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{Documents: make(map[string]map[string]string)}
}

func (m *MemoryClient) GetDocument(_ context.Context, _ Ref, id string) (*Document, error) {
	fields, ok := m.Documents[id]
	if !ok {
		return nil, nil
	}
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Document{Name: id, Fields: copied}, nil
}

func (m *MemoryClient) PatchDocument(_ context.Context, _ Ref, id string, fields map[string]string) error {
	doc, ok := m.Documents[id]
	if !ok {
		doc = make(map[string]string)
		m.Documents[id] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (m *MemoryClient) LatestFieldWithPrefix(_ context.Context, _ Ref, id, prefix string) (string, bool, error) {
	fields, ok := m.Documents[id]
	if !ok {
		return "", false, nil
	}
	value, found := latestWithPrefix(fields, prefix)
	return value, found, nil
}
