package blob

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"
)

type memoryBlob struct {
	data []byte
	at   time.Time
}

// MemoryStore keeps blobs in a map. Used in tests and with BLOB_BACKEND=memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

func (m *MemoryStore) Put(ctx context.Context, obj Object, body io.Reader) error {
	data, err := readLimited(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blobs[obj.ID] = memoryBlob{data: data, at: time.Now()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	m.mu.RLock()
	b, ok := m.blobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.blobs, id)
	m.mu.Unlock()
	return nil
}

// Len reports how many blobs are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

func (m *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.blobs))
	for id, b := range m.blobs {
		out = append(out, Entry{ID: id, ModTime: b.at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
