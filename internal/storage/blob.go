package storage

import (
	"context"
	"sync"
)

// Storage keys for the two persisted blobs. The whole conversation collection
// lives under a single key; every mutation rewrites it in full.
const (
	ConversationsKey = "ai-learning-coach-conversations"
	SettingsKey      = "ai-learning-coach-settings"
)

// BlobStore is the persistence primitive: a durable text blob per fixed key.
// It offers whole-blob replace only; there is no partial update.
type BlobStore interface {
	// Get returns the blob under key. ok is false when no blob exists.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set replaces the blob under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the blob under key entirely. Removing a missing key is
	// not an error.
	Remove(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}

// MemoryBlobStore is an in-memory BlobStore for quick start and tests.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]string
}

// NewMemoryBlobStore creates an empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string]string)}
}

var _ BlobStore = (*MemoryBlobStore)(nil)

func (m *MemoryBlobStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.blobs[key]
	return v, ok, nil
}

func (m *MemoryBlobStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = value
	return nil
}

func (m *MemoryBlobStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *MemoryBlobStore) Close() error { return nil }
