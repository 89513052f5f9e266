package engine

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"github.com/VeraLinno/Task-management-utility/internal/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CalculateNextOccurrence projects the due date that follows t.DueDate under
// t's recurrence rule. It reports false when the task does not recur or the
// rule has ended. The task itself is never modified.
func CalculateNextOccurrence(t model.Task) (time.Time, bool) {
	r := t.Recurrence
	if r == nil {
		return time.Time{}, false
	}

	// an unparsable end date does not bound the rule
	if r.EndDate != "" {
		if end, ok := validation.ParseTimestamp(r.EndDate); ok && !t.DueDate.Before(end) {
			return time.Time{}, false
		}
	}

	switch r.Frequency {
	case model.FrequencyDaily:
		return t.DueDate.AddDate(0, 0, 1), true
	case model.FrequencyWeekly:
		return t.DueDate.AddDate(0, 0, 7), true
	case model.FrequencyMonthly:
		return addMonthClamped(t.DueDate), true
	case model.FrequencyCustom:
		if r.DaysInterval < 1 {
			return time.Time{}, false
		}
		return t.DueDate.AddDate(0, 0, r.DaysInterval), true
	}
	return time.Time{}, false
}

// addMonthClamped moves t one calendar month forward, clamping the day to
// the last day of the target month (Jan 31 -> Feb 28).
func addMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	first := time.Date(y, m+1, 1, hh, mm, ss, t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// GetUpcomingRecurring returns the next occurrences of unfinished recurring
// tasks, soonest first, truncated to limit.
func (e *Engine) GetUpcomingRecurring(ctx context.Context, limit int) (out []model.UpcomingOccurrence, err error) {
	ctx, span := tracer.Start(ctx, "Engine.GetUpcomingRecurring",
		trace.WithAttributes(attribute.Int("limit", limit)),
	)
	defer func() { e.finish(ctx, span, "upcoming_recurring", err) }()

	tasks, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	sortTasks(tasks, nil)

	now := e.now()
	out = []model.UpcomingOccurrence{}
	for _, t := range tasks {
		if t.IsDone() || t.Recurrence == nil {
			continue
		}
		next, ok := CalculateNextOccurrence(t)
		if !ok {
			continue
		}
		out = append(out, model.UpcomingOccurrence{
			Task:           t,
			NextOccurrence: next,
			DaysUntilNext:  int(math.Ceil(next.Sub(now).Hours() / 24)),
		})
	}

	slices.SortStableFunc(out, func(a, b model.UpcomingOccurrence) int {
		return a.NextOccurrence.Compare(b.NextOccurrence)
	})
	if limit < 0 {
		limit = 0
	}
	if len(out) > limit {
		out = out[:limit]
	}

	span.SetAttributes(attribute.Int("task.count", len(out)))
	return out, nil
}
