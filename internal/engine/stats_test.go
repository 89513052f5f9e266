package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"github.com/VeraLinno/Task-management-utility/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatistics_Empty(t *testing.T) {
	e := newTestEngine(t)

	stats, err := e.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.CompletionRate)
	assert.Equal(t, 0, stats.ByStatus[model.StatusDone])
	assert.Len(t, stats.ByStatus, 3)
	assert.Len(t, stats.ByPriority, 3)
}

func TestGetStatistics(t *testing.T) {
	e := newTestEngine(t)

	// fixedNow is 2026-10-15 12:00 UTC
	mustCreate(t, e, map[string]any{"title": "yesterday", "dueDate": "2026-10-14", "priority": "high"})
	mustCreate(t, e, map[string]any{"title": "today", "dueDate": "2026-10-15", "priority": "high"})
	mustCreate(t, e, map[string]any{"title": "late but done", "dueDate": "2026-10-01", "status": "done"})
	mustCreate(t, e, map[string]any{"title": "late in progress", "dueDate": "2026-10-10", "status": "in-progress", "priority": "low"})
	mustCreate(t, e, map[string]any{"title": "future", "dueDate": "2026-12-01", "status": "done"})
	mustCreate(t, e, map[string]any{"title": "future todo", "dueDate": "2026-12-02"})

	stats, err := e.GetStatistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 3, stats.ByStatus[model.StatusTodo])
	assert.Equal(t, 1, stats.ByStatus[model.StatusInProgress])
	assert.Equal(t, 2, stats.ByStatus[model.StatusDone])
	assert.Equal(t, 2, stats.ByPriority[model.PriorityHigh])
	assert.Equal(t, 3, stats.ByPriority[model.PriorityMedium])
	assert.Equal(t, 1, stats.ByPriority[model.PriorityLow])
	assert.Equal(t, 2, stats.Overdue)
	assert.Equal(t, 33, stats.CompletionRate)
	assert.Equal(t, 2, stats.CompletedCount)
	assert.Equal(t, 3, stats.PendingCount)
	assert.Equal(t, 1, stats.InProgressCount)

	assert.Equal(t, stats.Total,
		stats.ByStatus[model.StatusTodo]+stats.ByStatus[model.StatusInProgress]+stats.ByStatus[model.StatusDone])
	assert.Equal(t, int(math.Round(float64(stats.ByStatus[model.StatusDone])/float64(stats.Total)*100)), stats.CompletionRate)
}

func TestGetStatistics_OverdueUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-10", -10*3600)
	// 2026-10-15 05:00 UTC is still 2026-10-14 in loc
	now := time.Date(2026, 10, 15, 5, 0, 0, 0, time.UTC)
	e := New(storage.NewMemoryStore(), WithClock(func() time.Time { return now }), WithLocation(loc))

	mustCreate(t, e, map[string]any{"title": "due 14th local", "dueDate": "2026-10-14T20:00:00-10:00"})

	stats, err := e.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Overdue)

	e.now = func() time.Time { return now.Add(6 * time.Hour) }
	stats, err = e.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Overdue)
}

func TestGetStatistics_DateOnlyDueDateBehindUTC(t *testing.T) {
	loc := time.FixedZone("UTC-10", -10*3600)
	// 2026-10-14 15:00 local, the due day itself
	now := time.Date(2026, 10, 14, 15, 0, 0, 0, loc)
	e := New(storage.NewMemoryStore(), WithClock(func() time.Time { return now }), WithLocation(loc))

	mustCreate(t, e, map[string]any{"title": "due today", "dueDate": "2026-10-14"})

	stats, err := e.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Overdue)

	e.now = func() time.Time { return time.Date(2026, 10, 14, 23, 59, 0, 0, loc) }
	stats, err = e.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Overdue)

	e.now = func() time.Time { return time.Date(2026, 10, 15, 0, 1, 0, 0, loc) }
	stats, err = e.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Overdue)
}

func TestGetStatistics_DateOnlyDueDateAheadOfUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2026, 10, 14, 23, 0, 0, 0, loc)
	e := New(storage.NewMemoryStore(), WithClock(func() time.Time { return now }), WithLocation(loc))

	mustCreate(t, e, map[string]any{"title": "due today", "dueDate": "2026-10-14"})

	stats, err := e.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Overdue)

	e.now = func() time.Time { return time.Date(2026, 10, 15, 0, 1, 0, 0, loc) }
	stats, err = e.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Overdue)
}
