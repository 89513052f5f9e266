package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreate() map[string]any {
	return map[string]any{
		"title":   "  Write report ",
		"dueDate": "2026-03-01",
	}
}

func TestValidateTaskInput_CreateDefaults(t *testing.T) {
	f, err := ValidateTaskInput(validCreate(), ModeCreate)
	require.NoError(t, err)

	assert.Empty(t, f.ID)
	require.NotNil(t, f.Title)
	assert.Equal(t, "Write report", *f.Title)
	require.NotNil(t, f.Description)
	assert.Equal(t, "", *f.Description)
	require.NotNil(t, f.Status)
	assert.Equal(t, model.StatusTodo, *f.Status)
	require.NotNil(t, f.Priority)
	assert.Equal(t, model.PriorityMedium, *f.Priority)
	require.NotNil(t, f.DueDate)
	assert.True(t, f.DueDate.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, f.HasTags)
	assert.False(t, f.HasRecurrence)
	assert.False(t, f.HasDependencies)
}

func TestValidateTaskInput_CreateFailures(t *testing.T) {
	tests := []struct {
		name  string
		patch map[string]any
		msg   string
	}{
		{"missing title", map[string]any{"title": nil}, "title required"},
		{"blank title", map[string]any{"title": "   "}, "title required"},
		{"numeric title", map[string]any{"title": 5.0}, "title required"},
		{"description not string", map[string]any{"description": 1.0}, "description must be a string"},
		{"bad status", map[string]any{"status": "blocked"}, `invalid status "blocked"`},
		{"bad priority", map[string]any{"priority": "urgent"}, `invalid priority "urgent"`},
		{"missing due date", map[string]any{"dueDate": nil}, "dueDate required"},
		{"unparsable due date", map[string]any{"dueDate": "soon"}, "dueDate must be a valid date"},
		{"impossible due date", map[string]any{"dueDate": "2026-02-31"}, "dueDate must be a valid date"},
		{"tags not array", map[string]any{"tags": "work"}, "tags must be an array"},
		{"empty tag", map[string]any{"tags": []any{"a", " "}}, "tags must contain non-empty strings"},
		{"non-string tag", map[string]any{"tags": []any{1.0}}, "tags must contain non-empty strings"},
		{"recurrence not object", map[string]any{"recurrence": "daily"}, "recurrence must be an object"},
		{"bad frequency", map[string]any{"recurrence": map[string]any{"frequency": "yearly"}}, `invalid recurrence frequency "yearly"`},
		{"custom without interval", map[string]any{"recurrence": map[string]any{"frequency": "custom"}}, "daysInterval must be a number >= 1 for custom recurrence"},
		{"custom zero interval", map[string]any{"recurrence": map[string]any{"frequency": "custom", "daysInterval": 0.0}}, "daysInterval must be a number >= 1 for custom recurrence"},
		{"interval above cap", map[string]any{"recurrence": map[string]any{"frequency": "custom", "daysInterval": 36501.0}}, "daysInterval must be at most 36500"},
		{"interval overflowing int", map[string]any{"recurrence": map[string]any{"frequency": "custom", "daysInterval": 1e17}}, "daysInterval must be at most 36500"},
		{"interval beyond int64", map[string]any{"recurrence": map[string]any{"frequency": "custom", "daysInterval": 1e300}}, "daysInterval must be at most 36500"},
		{"end date not string", map[string]any{"recurrence": map[string]any{"frequency": "daily", "endDate": 3.0}}, "recurrence endDate must be a string"},
		{"dependencies not array", map[string]any{"dependencies": "abc"}, "dependencies must be an array"},
		{"empty dependency", map[string]any{"dependencies": []any{""}}, "dependencies must contain non-empty strings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validCreate()
			for k, v := range tt.patch {
				raw[k] = v
			}
			_, err := ValidateTaskInput(raw, ModeCreate)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrValidation))
			assert.Equal(t, model.KindValidation, model.KindOf(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestValidateTaskInput_NilInput(t *testing.T) {
	_, err := ValidateTaskInput(nil, ModeCreate)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestValidateTaskInput_FullCreate(t *testing.T) {
	raw := map[string]any{
		"title":        "Plan sprint",
		"description":  "  with the team ",
		"status":       "in-progress",
		"priority":     "high",
		"dueDate":      "2026-03-01T09:30:00Z",
		"tags":         []any{"Work", "work", " Planning ", "WORK"},
		"recurrence":   map[string]any{"frequency": "custom", "daysInterval": 3.0, "endDate": "2026-06-01"},
		"dependencies": []any{"a", "b", "a"},
	}

	f, err := ValidateTaskInput(raw, ModeCreate)
	require.NoError(t, err)

	assert.Equal(t, "with the team", *f.Description)
	assert.Equal(t, model.StatusInProgress, *f.Status)
	assert.Equal(t, model.PriorityHigh, *f.Priority)
	assert.True(t, f.DueDate.Equal(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, []string{"Work", "Planning"}, f.Tags)
	require.NotNil(t, f.Recurrence)
	assert.Equal(t, model.Recurrence{Frequency: model.FrequencyCustom, DaysInterval: 3, EndDate: "2026-06-01"}, *f.Recurrence)
	assert.Equal(t, []string{"a", "b"}, f.Dependencies)
}

func TestValidateTaskInput_IntervalAtCap(t *testing.T) {
	raw := validCreate()
	raw["recurrence"] = map[string]any{"frequency": "custom", "daysInterval": float64(MaxDaysInterval)}

	f, err := ValidateTaskInput(raw, ModeCreate)
	require.NoError(t, err)
	assert.Equal(t, MaxDaysInterval, f.Recurrence.DaysInterval)
}

func TestValidateTaskInput_UpdateRequiresID(t *testing.T) {
	_, err := ValidateTaskInput(map[string]any{"title": "x"}, ModeUpdate)
	require.Error(t, err)
	assert.Equal(t, "id required", err.Error())

	_, err = ValidateTaskInput(map[string]any{"id": "  "}, ModeUpdate)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestValidateTaskInput_UpdateCoercesNumericID(t *testing.T) {
	f, err := ValidateTaskInput(map[string]any{"id": 42.0}, ModeUpdate)
	require.NoError(t, err)
	assert.Equal(t, "42", f.ID)
}

func TestValidateTaskInput_UpdateIsPartial(t *testing.T) {
	f, err := ValidateTaskInput(map[string]any{"id": "abc", "status": "done"}, ModeUpdate)
	require.NoError(t, err)

	assert.Equal(t, "abc", f.ID)
	assert.Nil(t, f.Title)
	assert.Nil(t, f.Description)
	assert.Nil(t, f.Priority)
	assert.Nil(t, f.DueDate)
	require.NotNil(t, f.Status)
	assert.Equal(t, model.StatusDone, *f.Status)
}

func TestValidateTaskInput_UpdateStillValidatesPresentFields(t *testing.T) {
	_, err := ValidateTaskInput(map[string]any{"id": "abc", "title": ""}, ModeUpdate)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = ValidateTaskInput(map[string]any{"id": "abc", "dueDate": "2026-13-01"}, ModeUpdate)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestValidateTaskInput_UpdateClearsRecurrence(t *testing.T) {
	f, err := ValidateTaskInput(map[string]any{"id": "abc", "recurrence": nil}, ModeUpdate)
	require.NoError(t, err)
	assert.True(t, f.HasRecurrence)
	assert.Nil(t, f.Recurrence)
}

func TestNormalizeTags(t *testing.T) {
	in := []string{"Home", "home", "", "  Errands", "HOME", "errands", "Garden"}
	want := []string{"Home", "Errands", "Garden"}

	once := NormalizeTags(in)
	assert.Equal(t, want, once)
	assert.Equal(t, once, NormalizeTags(once))
	assert.Empty(t, NormalizeTags(nil))
}

func TestNormalizeDependencies(t *testing.T) {
	assert.Equal(t, []string{"x", "y"}, NormalizeDependencies([]string{"x", " y", "x", ""}))
}
