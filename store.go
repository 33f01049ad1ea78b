package securestore

import (
	"context"
	"sync"
)

// Store is the underlying key-value store. It only ever sees storage keys
// and ciphertext. Durability, ordering, atomicity of Batch and locking are
// the implementation's responsibility.
type Store interface {
	// Open prepares the store for use
	Open(ctx context.Context) error

	// Close releases the store's resources
	Close(ctx context.Context) error

	// Get returns the value stored under key, or an error wrapping
	// ErrNotFound if there is none
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Put stores value under key
	Put(ctx context.Context, key, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Batch applies ops in order
	Batch(ctx context.Context, ops []BatchOp) error
}

// MemStore is an in-memory Store. Batches are applied atomically under a
// single lock.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	open bool
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

// Open marks the store as open
func (m *MemStore) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	return nil
}

// Close marks the store as closed. The data is kept.
func (m *MemStore) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}

// Get returns a copy of the stored value
func (m *MemStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put stores a copy of value
func (m *MemStore) Put(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = cloneBytes(value)
	return nil
}

// Delete removes key
func (m *MemStore) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

// Batch applies ops in order under one lock
func (m *MemStore) Batch(ctx context.Context, ops []BatchOp) error {
	for _, op := range ops {
		if op.Type != OpPut && op.Type != OpDelete {
			return &ConfigError{Field: "type", Value: op.Type, Message: "unknown operation type", Err: ErrUnsupportedOpType}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		if op.Type == OpPut {
			m.data[string(op.Key)] = cloneBytes(op.Value)
		} else {
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

// Len returns the number of stored records
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Dump returns a copy of every stored record keyed by storage key
func (m *MemStore) Dump() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		out[k] = cloneBytes(v)
	}
	return out
}

// IsOpen reports whether Open has been called without a later Close
func (m *MemStore) IsOpen() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.open
}
