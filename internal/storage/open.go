package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Open builds the adapter for backend. The returned close func releases
// any underlying resources and is never nil.
func Open(backend, dataDir, key string, logger *slog.Logger) (Adapter, func() error, error) {
	noop := func() error { return nil }

	switch backend {
	case "memory":
		return NewMemoryStore(), noop, nil
	case "", "file":
		s, err := NewFileStore(dataDir, key)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case "badger":
		s, err := OpenBadgerStore(BadgerConfig{
			Path:       filepath.Join(dataDir, "badger"),
			SyncWrites: true,
			Key:        key,
			Logger:     logger,
		})
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown storage backend %q", backend)
}
