package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FileStore persists the collection as one JSON file named after the key.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore under dataDir, creating the directory if needed.
func NewFileStore(dataDir, key string) (*FileStore, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return &FileStore{path: filepath.Join(dataDir, key+".json")}, nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

// GetAllTasks reads the collection from disk. A missing file is an empty collection.
func (s *FileStore) GetAllTasks(ctx context.Context) ([]model.Task, error) {
	_, span := tracer.Start(ctx, "FileStore.GetAllTasks",
		trace.WithAttributes(attribute.String("storage.path", s.path)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Task{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return decode(b), nil
}

// SetAllTasks writes the collection through a temp file and rename.
func (s *FileStore) SetAllTasks(ctx context.Context, tasks []model.Task) error {
	_, span := tracer.Start(ctx, "FileStore.SetAllTasks",
		trace.WithAttributes(
			attribute.String("storage.path", s.path),
			attribute.Int("task.count", len(tasks)),
		),
	)
	defer span.End()

	b, err := encode(tasks)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Clear deletes the backing file.
func (s *FileStore) Clear(ctx context.Context) error {
	_, span := tracer.Start(ctx, "FileStore.Clear")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		span.RecordError(err)
		return fmt.Errorf("failed to remove %s: %w", s.path, err)
	}
	return nil
}
