package engine

import (
	"context"
	"math"
	"time"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"go.opentelemetry.io/otel/attribute"
)

// GetStatistics aggregates the collection in a single pass.
func (e *Engine) GetStatistics(ctx context.Context) (stats model.Statistics, err error) {
	ctx, span := tracer.Start(ctx, "Engine.GetStatistics")
	defer func() { e.finish(ctx, span, "statistics", err) }()

	tasks, err := e.load(ctx)
	if err != nil {
		return model.Statistics{}, err
	}

	stats = model.Statistics{
		Total: len(tasks),
		ByStatus: map[model.Status]int{
			model.StatusTodo:       0,
			model.StatusInProgress: 0,
			model.StatusDone:       0,
		},
		ByPriority: map[model.Priority]int{
			model.PriorityLow:    0,
			model.PriorityMedium: 0,
			model.PriorityHigh:   0,
		},
	}

	now := e.now()
	for i := range tasks {
		t := &tasks[i]
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		if !t.IsDone() && now.After(endOfDay(t.DueDate, e.loc)) {
			stats.Overdue++
		}
	}

	stats.CompletedCount = stats.ByStatus[model.StatusDone]
	stats.PendingCount = stats.ByStatus[model.StatusTodo]
	stats.InProgressCount = stats.ByStatus[model.StatusInProgress]
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.CompletedCount) / float64(stats.Total) * 100))
	}

	span.SetAttributes(
		attribute.Int("task.count", stats.Total),
		attribute.Int("task.overdue", stats.Overdue),
	)
	return stats, nil
}

// endOfDay returns the last instant, in loc, of the calendar day t was
// written for. The day is read in t's own offset so a date-only due date
// (stored as UTC midnight) keeps its day in every location.
func endOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}
