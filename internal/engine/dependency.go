package engine

import (
	"context"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CanCompleteTask evaluates the dependency gate for id without changing anything.
func (e *Engine) CanCompleteTask(ctx context.Context, id string) (check model.CompletionCheck, err error) {
	ctx, span := tracer.Start(ctx, "Engine.CanCompleteTask",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer func() { e.finish(ctx, span, "can_complete", err) }()

	tasks, err := e.load(ctx)
	if err != nil {
		return model.CompletionCheck{}, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return model.CompletionCheck{}, model.NewNotFoundError(id)
	}

	blocked := unsatisfied(tasks, tasks[i])
	if len(blocked) > 0 {
		return model.CompletionCheck{CanComplete: false, BlockedBy: blocked}, nil
	}
	return model.CompletionCheck{CanComplete: true}, nil
}

// AreDependenciesSatisfied reports whether every dependency of id is done.
func (e *Engine) AreDependenciesSatisfied(ctx context.Context, id string) (bool, error) {
	check, err := e.CanCompleteTask(ctx, id)
	if err != nil {
		return false, err
	}
	return check.CanComplete, nil
}

// unsatisfied lists the dependencies of t that are not done, by title,
// falling back to the raw id when the dependency no longer exists.
func unsatisfied(tasks []model.Task, t model.Task) []string {
	var blocked []string
	for _, dep := range t.Dependencies {
		i := indexOf(tasks, dep)
		switch {
		case i < 0:
			blocked = append(blocked, dep)
		case !tasks[i].IsDone():
			blocked = append(blocked, tasks[i].Title)
		}
	}
	return blocked
}

// dependentsOf lists the titles of tasks that depend on id.
func dependentsOf(tasks []model.Task, id string) []string {
	var out []string
	for i := range tasks {
		if tasks[i].ID != id && tasks[i].DependsOn(id) {
			out = append(out, tasks[i].Title)
		}
	}
	return out
}

// checkDependencyGraph rejects a self reference or a cycle introduced by
// updated's dependency list.
func checkDependencyGraph(tasks []model.Task, updated model.Task) error {
	edges := make(map[string][]string, len(tasks))
	titles := make(map[string]string, len(tasks))
	for i := range tasks {
		edges[tasks[i].ID] = tasks[i].Dependencies
		titles[tasks[i].ID] = tasks[i].Title
	}
	edges[updated.ID] = updated.Dependencies

	for _, dep := range updated.Dependencies {
		if dep == updated.ID {
			return model.NewDependencyError("task cannot depend on itself", []string{updated.Title})
		}
		if reaches(edges, dep, updated.ID) {
			name := titles[dep]
			if name == "" {
				name = dep
			}
			return model.NewDependencyError("dependency cycle detected", []string{name})
		}
	}
	return nil
}

// reaches reports whether target is reachable from start along dependency edges.
func reaches(edges map[string][]string, start, target string) bool {
	seen := map[string]bool{}
	stack := []string{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, edges[id]...)
	}
	return false
}
