package store

import "sync"

// Memory is an in-memory Store, useful for tests and for a single-node
// deployment that doesn't need durability across restarts.
type Memory struct {
	mu   sync.RWMutex
	data map[string]Blob
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]Blob)}
}

func (m *Memory) Read(id string) (Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.data[id]
	if !ok {
		return Blob{}, ErrNotFound
	}
	// Return a copy so callers can't mutate stored state through the
	// returned slice.
	cp := Blob{ContentType: b.ContentType, Data: make([]byte, len(b.Data)), Signers: append([]string(nil), b.Signers...)}
	copy(cp.Data, b.Data)
	return cp, nil
}

func (m *Memory) Write(id string, blob Blob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := Blob{ContentType: blob.ContentType, Data: make([]byte, len(blob.Data)), Signers: append([]string(nil), blob.Signers...)}
	copy(stored.Data, blob.Data)
	m.data[id] = stored
	return nil
}
