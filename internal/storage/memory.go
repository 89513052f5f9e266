package storage

import (
	"context"
	"sync"

	"github.com/VeraLinno/Task-management-utility/internal/model"
)

// MemoryStore keeps the encoded collection in memory.
// Tasks go through the same JSON encoding as the persistent stores so that
// callers never share slices with the store.
type MemoryStore struct {
	mu  sync.RWMutex
	doc []byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreFromBytes creates a MemoryStore holding a raw document.
func NewMemoryStoreFromBytes(doc []byte) *MemoryStore {
	return &MemoryStore{doc: append([]byte(nil), doc...)}
}

// GetAllTasks returns the stored collection.
func (s *MemoryStore) GetAllTasks(ctx context.Context) ([]model.Task, error) {
	_, span := tracer.Start(ctx, "MemoryStore.GetAllTasks")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return decode(s.doc), nil
}

// SetAllTasks replaces the stored collection.
func (s *MemoryStore) SetAllTasks(ctx context.Context, tasks []model.Task) error {
	_, span := tracer.Start(ctx, "MemoryStore.SetAllTasks")
	defer span.End()

	b, err := encode(tasks)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = b
	return nil
}

// Clear removes the stored collection.
func (s *MemoryStore) Clear(ctx context.Context) error {
	_, span := tracer.Start(ctx, "MemoryStore.Clear")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
	return nil
}
