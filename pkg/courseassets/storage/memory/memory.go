// Package memory provides an in-memory courseassets.AssetStore, useful
// for tests and development wiring.
package memory

import (
	"context"
	"sync"
)

// Store is an in-memory implementation of the courseassets.AssetStore interface
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New creates a new in-memory asset store
func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Put stores a blob under the object key
func (s *Store) Put(objectKey string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blobCopy := make([]byte, len(data))
	copy(blobCopy, data)
	s.blobs[objectKey] = blobCopy
}

// Exists reports whether a blob is present for the object key
func (s *Store) Exists(ctx context.Context, objectKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[objectKey]
	return ok, nil
}

// Delete removes the blob for the object key
func (s *Store) Delete(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, objectKey)
	return nil
}

// Len returns the number of stored blobs
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
