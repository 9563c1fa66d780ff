package conversation

import (
	"context"
	"sync"

	"github.com/mugeshbabu/docchat/internal/db"
)

// mockStore is an in-memory JSON store mimicking JSON.SET / JSON.GET $ semantics.
type mockStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	setErr    error
	getErr    error
	existsErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) JSONSet(_ context.Context, key, _ string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.data[key] = stored
	return nil
}

func (m *mockStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	// JSON.GET with a $ path wraps the document in an array.
	wrapped := append([]byte("["), data...)
	return append(wrapped, ']'), nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockStore) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}
