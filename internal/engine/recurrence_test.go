package engine

import (
	"context"
	"testing"
	"time"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateNextOccurrence(t *testing.T) {
	tests := []struct {
		name   string
		due    time.Time
		rec    *model.Recurrence
		want   time.Time
		wantOK bool
	}{
		{"no recurrence", date(2026, 1, 1), nil, time.Time{}, false},
		{"daily", date(2026, 1, 1), &model.Recurrence{Frequency: model.FrequencyDaily}, date(2026, 1, 2), true},
		{"weekly", date(2026, 1, 1), &model.Recurrence{Frequency: model.FrequencyWeekly}, date(2026, 1, 8), true},
		{"monthly", date(2026, 1, 15), &model.Recurrence{Frequency: model.FrequencyMonthly}, date(2026, 2, 15), true},
		{"monthly clamps to month end", date(2026, 1, 31), &model.Recurrence{Frequency: model.FrequencyMonthly}, date(2026, 2, 28), true},
		{"monthly clamps into leap february", date(2028, 1, 30), &model.Recurrence{Frequency: model.FrequencyMonthly}, date(2028, 2, 29), true},
		{"monthly across year", date(2026, 12, 31), &model.Recurrence{Frequency: model.FrequencyMonthly}, date(2027, 1, 31), true},
		{"custom", date(2026, 1, 1), &model.Recurrence{Frequency: model.FrequencyCustom, DaysInterval: 3}, date(2026, 1, 4), true},
		{"custom without interval", date(2026, 1, 1), &model.Recurrence{Frequency: model.FrequencyCustom}, time.Time{}, false},
		{"ended on due date", date(2026, 1, 1), &model.Recurrence{Frequency: model.FrequencyWeekly, EndDate: "2026-01-01"}, time.Time{}, false},
		{"ended before due date", date(2026, 2, 1), &model.Recurrence{Frequency: model.FrequencyDaily, EndDate: "2026-01-01"}, time.Time{}, false},
		{"end date in future", date(2026, 1, 1), &model.Recurrence{Frequency: model.FrequencyDaily, EndDate: "2026-01-10"}, date(2026, 1, 2), true},
		{"unparsable end date is ignored", date(2026, 1, 1), &model.Recurrence{Frequency: model.FrequencyDaily, EndDate: "someday"}, date(2026, 1, 2), true},
		{"unknown frequency", date(2026, 1, 1), &model.Recurrence{Frequency: "yearly"}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := model.Task{DueDate: tt.due, Recurrence: tt.rec}
			got, ok := CalculateNextOccurrence(task)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			assert.True(t, task.DueDate.Equal(tt.due))
		})
	}
}

func TestCalculateNextOccurrence_KeepsTimeOfDay(t *testing.T) {
	due := time.Date(2026, 3, 31, 17, 45, 0, 0, time.UTC)
	got, ok := CalculateNextOccurrence(model.Task{DueDate: due, Recurrence: &model.Recurrence{Frequency: model.FrequencyMonthly}})
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 4, 30, 17, 45, 0, 0, time.UTC), got)
}

func TestGetUpcomingRecurring(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	mustCreate(t, e, map[string]any{"title": "Weekly review", "dueDate": "2026-10-16", "recurrence": map[string]any{"frequency": "weekly"}})
	mustCreate(t, e, map[string]any{"title": "Standup", "dueDate": "2026-10-16", "recurrence": map[string]any{"frequency": "daily"}})
	mustCreate(t, e, map[string]any{"title": "Rent", "dueDate": "2026-10-01", "recurrence": map[string]any{"frequency": "monthly"}})
	mustCreate(t, e, map[string]any{"title": "Finished", "dueDate": "2026-10-16", "status": "done", "recurrence": map[string]any{"frequency": "daily"}})
	mustCreate(t, e, map[string]any{"title": "Ended", "dueDate": "2026-10-16", "recurrence": map[string]any{"frequency": "daily", "endDate": "2026-10-01"}})
	mustCreate(t, e, map[string]any{"title": "One-off", "dueDate": "2026-10-16"})

	upcoming, err := e.GetUpcomingRecurring(ctx, 10)
	require.NoError(t, err)
	require.Len(t, upcoming, 3)

	assert.Equal(t, "Standup", upcoming[0].Task.Title)
	assert.True(t, date(2026, 10, 17).Equal(upcoming[0].NextOccurrence))
	// fixedNow is 2026-10-15 12:00, so 1.5 days rounds up
	assert.Equal(t, 2, upcoming[0].DaysUntilNext)

	assert.Equal(t, "Weekly review", upcoming[1].Task.Title)
	assert.True(t, date(2026, 10, 23).Equal(upcoming[1].NextOccurrence))

	assert.Equal(t, "Rent", upcoming[2].Task.Title)
	assert.True(t, date(2026, 11, 1).Equal(upcoming[2].NextOccurrence))
	assert.Equal(t, 17, upcoming[2].DaysUntilNext)

	// projection never writes
	tasks, err := e.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, tasks, 6)

	limited, err := e.GetUpcomingRecurring(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Standup", limited[0].Task.Title)

	none, err := e.GetUpcomingRecurring(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
