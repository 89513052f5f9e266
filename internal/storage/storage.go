// Package storage persists the task collection as a single JSON document.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/VeraLinno/Task-management-utility/internal/storage")

// DefaultKey is the fixed identifier the collection is stored under.
const DefaultKey = "taskManager.tasks"

// Adapter reads and writes the whole task collection.
type Adapter interface {
	GetAllTasks(ctx context.Context) ([]model.Task, error)
	SetAllTasks(ctx context.Context, tasks []model.Task) error
	Clear(ctx context.Context) error
}

type document struct {
	Tasks json.RawMessage `json:"tasks"`
}

// decode reads a stored document. Empty input, malformed JSON and a
// non-array tasks field all yield an empty collection.
func decode(b []byte) []model.Task {
	tasks := []model.Task{}
	if len(b) == 0 {
		return tasks
	}

	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return tasks
	}
	if err := json.Unmarshal(doc.Tasks, &tasks); err != nil || tasks == nil {
		return []model.Task{}
	}
	for i := range tasks {
		if tasks[i].Tags == nil {
			tasks[i].Tags = []string{}
		}
		if tasks[i].Dependencies == nil {
			tasks[i].Dependencies = []string{}
		}
	}
	return tasks
}

func encode(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.Marshal(struct {
		Tasks []model.Task `json:"tasks"`
	}{Tasks: tasks})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tasks: %w", err)
	}
	return b, nil
}
