package preview

import (
	"context"
	"sync"
)

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[Ref]Blob
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[Ref]Blob)}
}

// Create stores a copy of blob under a fresh reference.
func (s *MemoryStore) Create(_ context.Context, blob Blob) (Ref, error) {
	blob.Data = append([]byte(nil), blob.Data...)
	ref := newRef()

	s.mu.Lock()
	s.blobs[ref] = blob
	s.mu.Unlock()
	return ref, nil
}

// Open resolves ref.
func (s *MemoryStore) Open(_ context.Context, ref Ref) (*Blob, error) {
	s.mu.RLock()
	blob, ok := s.blobs[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &blob, nil
}

// Revoke forgets ref. Revoking an unknown reference is not an error.
func (s *MemoryStore) Revoke(_ context.Context, ref Ref) error {
	s.mu.Lock()
	delete(s.blobs, ref)
	s.mu.Unlock()
	return nil
}

// Len reports how many references are live.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
