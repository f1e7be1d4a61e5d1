package handoff

import (
	"context"
	"sync"
)

// MemoryStore keeps slots in process memory
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

// Put stores a copy of value under key
func (ms *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.slots[key] = stored
	return nil
}

// Get returns the value under key
func (ms *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	value, ok := ms.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Take returns and removes the value under key
func (ms *MemoryStore) Take(_ context.Context, key string) ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	value, ok := ms.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(ms.slots, key)
	return value, nil
}

// Delete removes key. Deleting an empty slot is not an error.
func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.slots, key)
	return nil
}

// Close is a no-op
func (ms *MemoryStore) Close() error {
	return nil
}
