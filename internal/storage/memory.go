package storage

import (
	"context"
	"io"
	"os"
	"sync"

	"iiifingest/internal/errs"
)

// MemoryStore keeps uploaded objects in memory. It exists for tests
// and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailNext forces the next Put/PutFile to fail, leaving no object
	// behind. Useful for exercising error paths.
	FailNext bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Put stores body under bucket/key.
func (m *MemoryStore) Put(ctx context.Context, body io.Reader, bucket, key string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", errs.Wrap(errs.ErrStorage, err, "storage", "read upload body")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return "", errs.Wrap(errs.ErrStorage, nil, "storage", "simulated upload failure")
	}
	m.objects[bucket+"/"+key] = data
	return key, nil
}

// PutFile stores the contents of a local file under bucket/key.
func (m *MemoryStore) PutFile(ctx context.Context, path, bucket, key string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errs.Wrap(errs.ErrStorage, err, "storage", "open upload source")
	}
	defer file.Close()
	return m.Put(ctx, file, bucket, key)
}

// Object returns a stored object and whether it exists.
func (m *MemoryStore) Object(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+key]
	return data, ok
}

// Len reports the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
