// Package engine owns the task lifecycle on top of a storage.Adapter.
//
// The engine keeps no task state between calls: every operation reads the
// whole collection from the adapter, and every mutation writes it back.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"github.com/VeraLinno/Task-management-utility/internal/storage"
	"github.com/VeraLinno/Task-management-utility/internal/validation"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/VeraLinno/Task-management-utility/internal/engine")

// Engine implements task CRUD, queries, statistics, recurrence projection
// and the dependency rules.
type Engine struct {
	store  storage.Adapter
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location
	newID  func() string
	ops    metric.Int64Counter

	// mu serializes read-modify-write cycles issued through this engine.
	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the location used to decide when a due date's day ends.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithOperationCounter records each operation and its outcome kind.
func WithOperationCounter(c metric.Int64Counter) Option {
	return func(e *Engine) { e.ops = c }
}

// New creates an Engine over store.
func New(store storage.Adapter, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		loc:    time.UTC,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// List returns every task, ordered by sortCfg or the default order.
func (e *Engine) List(ctx context.Context, sortCfg *SortConfig) (tasks []model.Task, err error) {
	ctx, span := tracer.Start(ctx, "Engine.List")
	defer func() { e.finish(ctx, span, "list", err) }()

	tasks, err = e.load(ctx)
	if err != nil {
		return nil, err
	}
	sortTasks(tasks, sortCfg)

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// GetByID returns the task with the given id.
func (e *Engine) GetByID(ctx context.Context, id string) (task model.Task, err error) {
	ctx, span := tracer.Start(ctx, "Engine.GetByID",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer func() { e.finish(ctx, span, "get", err) }()

	tasks, err := e.load(ctx)
	if err != nil {
		return model.Task{}, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		span.SetAttributes(attribute.Bool("task.found", false))
		return model.Task{}, model.NewNotFoundError(id)
	}

	span.SetAttributes(attribute.Bool("task.found", true))
	return tasks[i], nil
}

// Create validates raw input, assigns an id and timestamps, and persists the task.
func (e *Engine) Create(ctx context.Context, raw map[string]any) (task model.Task, err error) {
	ctx, span := tracer.Start(ctx, "Engine.Create")
	defer func() { e.finish(ctx, span, "create", err) }()

	fields, err := validation.ValidateTaskInput(raw, validation.ModeCreate)
	if err != nil {
		return model.Task{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tasks, err := e.load(ctx)
	if err != nil {
		return model.Task{}, err
	}

	now := e.now()
	task = model.Task{
		ID:           e.newID(),
		Tags:         []string{},
		Dependencies: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	apply(&task, fields)

	tasks = append(tasks, task)
	if err := e.save(ctx, tasks); err != nil {
		return model.Task{}, err
	}

	span.SetAttributes(attribute.String("task.id", task.ID))
	e.logger.InfoContext(ctx, "task created", slog.String("id", task.ID), slog.String("title", task.Title))
	return task, nil
}

// Update validates raw input (which must carry an id) and merges it over
// the stored task. Fields absent from the input keep their values.
func (e *Engine) Update(ctx context.Context, raw map[string]any) (task model.Task, err error) {
	ctx, span := tracer.Start(ctx, "Engine.Update")
	defer func() { e.finish(ctx, span, "update", err) }()

	fields, err := validation.ValidateTaskInput(raw, validation.ModeUpdate)
	if err != nil {
		return model.Task{}, err
	}
	span.SetAttributes(attribute.String("task.id", fields.ID))

	e.mu.Lock()
	defer e.mu.Unlock()

	tasks, err := e.load(ctx)
	if err != nil {
		return model.Task{}, err
	}
	i := indexOf(tasks, fields.ID)
	if i < 0 {
		return model.Task{}, model.NewNotFoundError(fields.ID)
	}

	existing := tasks[i]
	updated := existing.Clone()
	apply(&updated, fields)

	if fields.HasDependencies {
		if err := checkDependencyGraph(tasks, updated); err != nil {
			return model.Task{}, err
		}
	}
	if !existing.IsDone() && updated.IsDone() {
		if blocked := unsatisfied(tasks, updated); len(blocked) > 0 {
			return model.Task{}, model.NewDependencyError("cannot complete task with unfinished dependencies", blocked)
		}
	}

	updated.UpdatedAt = e.now()
	tasks[i] = updated
	if err := e.save(ctx, tasks); err != nil {
		return model.Task{}, err
	}

	e.logger.InfoContext(ctx, "task updated", slog.String("id", updated.ID), slog.String("status", string(updated.Status)))
	return updated, nil
}

// Remove deletes a task unless another task depends on it.
func (e *Engine) Remove(ctx context.Context, id string) (removed bool, err error) {
	ctx, span := tracer.Start(ctx, "Engine.Remove",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer func() { e.finish(ctx, span, "remove", err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	tasks, err := e.load(ctx)
	if err != nil {
		return false, err
	}
	// a dangling reference still blocks removal of the id it names
	if dependents := dependentsOf(tasks, id); len(dependents) > 0 {
		return false, model.NewDependencyError("task is required by other tasks", dependents)
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return false, model.NewNotFoundError(id)
	}

	tasks = append(tasks[:i], tasks[i+1:]...)
	if err := e.save(ctx, tasks); err != nil {
		return false, err
	}

	e.logger.InfoContext(ctx, "task removed", slog.String("id", id))
	return true, nil
}

// Count returns the number of stored tasks, or 0 when storage fails.
func (e *Engine) Count() int64 {
	ctx := context.Background()
	tasks, err := e.store.GetAllTasks(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "failed to count tasks", slog.Any("error", err))
		return 0
	}
	return int64(len(tasks))
}

func (e *Engine) load(ctx context.Context) ([]model.Task, error) {
	tasks, err := e.store.GetAllTasks(ctx)
	if err != nil {
		return nil, model.WrapStorage(err)
	}
	return tasks, nil
}

func (e *Engine) save(ctx context.Context, tasks []model.Task) error {
	if err := e.store.SetAllTasks(ctx, tasks); err != nil {
		return model.WrapStorage(err)
	}
	return nil
}

// finish ends span, recording err and the operation outcome.
func (e *Engine) finish(ctx context.Context, span trace.Span, op string, err error) {
	defer span.End()

	outcome := "ok"
	if err != nil {
		outcome = string(model.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if model.KindOf(err) == model.KindStorage {
			e.logger.ErrorContext(ctx, "storage failure", slog.String("operation", op), slog.Any("error", err))
		}
	}
	if e.ops != nil {
		e.ops.Add(ctx, 1, metric.WithAttributes(
			attribute.String("task.operation", op),
			attribute.String("task.outcome", outcome),
		))
	}
}

// apply copies the fields present in f onto t.
func apply(t *model.Task, f validation.Fields) {
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Status != nil {
		t.Status = *f.Status
	}
	if f.Priority != nil {
		t.Priority = *f.Priority
	}
	if f.DueDate != nil {
		t.DueDate = *f.DueDate
	}
	if f.HasTags {
		t.Tags = f.Tags
	}
	if f.HasRecurrence {
		t.Recurrence = f.Recurrence
	}
	if f.HasDependencies {
		t.Dependencies = f.Dependencies
	}
}

func indexOf(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
