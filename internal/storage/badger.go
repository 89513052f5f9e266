package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BadgerConfig holds configuration for a BadgerStore.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps the database off disk. Useful for testing.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// Key is the entry the collection is stored under.
	Key string

	// Logger receives BadgerDB's internal logging. Nil disables it.
	Logger *slog.Logger
}

// BadgerStore persists the collection under a single key in BadgerDB.
type BadgerStore struct {
	db  *badger.DB
	key []byte
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadgerStore opens (or creates) a BadgerDB-backed store.
// The caller must Close it.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &BadgerStore{db: db, key: []byte(cfg.Key)}, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// GetAllTasks reads the collection. A missing key is an empty collection.
func (s *BadgerStore) GetAllTasks(ctx context.Context) ([]model.Task, error) {
	_, span := tracer.Start(ctx, "BadgerStore.GetAllTasks",
		trace.WithAttributes(attribute.String("storage.key", string(s.key))),
	)
	defer span.End()

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	return decode(raw), nil
}

// SetAllTasks replaces the collection in one transaction.
func (s *BadgerStore) SetAllTasks(ctx context.Context, tasks []model.Task) error {
	_, span := tracer.Start(ctx, "BadgerStore.SetAllTasks",
		trace.WithAttributes(
			attribute.String("storage.key", string(s.key)),
			attribute.Int("task.count", len(tasks)),
		),
	)
	defer span.End()

	b, err := encode(tasks)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, b)
	}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

// Clear deletes the collection key.
func (s *BadgerStore) Clear(ctx context.Context) error {
	_, span := tracer.Start(ctx, "BadgerStore.Clear")
	defer span.End()

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key)
	}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete %s: %w", s.key, err)
	}
	return nil
}

