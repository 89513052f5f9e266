// Package validation turns untyped task input into normalized fields.
package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"github.com/go-playground/validator/v10"
)

// Mode selects which rules apply to an input.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// MaxDaysInterval bounds custom recurrence to about a century.
const MaxDaysInterval = 36500

// Fields is a validated, normalized task field bundle.
// Pointer and Has* fields distinguish "absent" from "set" so that updates
// only touch what the caller supplied.
type Fields struct {
	ID          string
	Title       *string
	Description *string
	Status      *model.Status
	Priority    *model.Priority
	DueDate     *time.Time

	Tags    []string
	HasTags bool

	// Recurrence may be nil with HasRecurrence set, which clears it.
	Recurrence    *model.Recurrence
	HasRecurrence bool

	Dependencies    []string
	HasDependencies bool
}

// ValidateTaskInput validates raw input for the given mode.
// Every failure is a *model.TaskError of kind VALIDATION_ERROR.
func ValidateTaskInput(raw map[string]any, mode Mode) (Fields, error) {
	var f Fields
	if raw == nil {
		return f, model.NewValidationError("input must be an object")
	}

	if mode == ModeUpdate {
		id, err := coerceID(raw["id"])
		if err != nil {
			return f, err
		}
		f.ID = id
	}

	// title
	if v, ok := present(raw, "title"); ok || mode == ModeCreate {
		s, isString := v.(string)
		s = strings.TrimSpace(s)
		if !isString || s == "" {
			return f, model.NewValidationError("title required")
		}
		f.Title = &s
	}

	// description
	if v, ok := present(raw, "description"); ok {
		s, isString := v.(string)
		if !isString {
			return f, model.NewValidationError("description must be a string")
		}
		s = strings.TrimSpace(s)
		f.Description = &s
	} else if mode == ModeCreate {
		empty := ""
		f.Description = &empty
	}

	// status
	if v, ok := present(raw, "status"); ok {
		s, err := enumValue(v, "status", "oneof=todo in-progress done")
		if err != nil {
			return f, err
		}
		st := model.Status(s)
		f.Status = &st
	} else if mode == ModeCreate {
		st := model.StatusTodo
		f.Status = &st
	}

	// priority
	if v, ok := present(raw, "priority"); ok {
		s, err := enumValue(v, "priority", "oneof=low medium high")
		if err != nil {
			return f, err
		}
		p := model.Priority(s)
		f.Priority = &p
	} else if mode == ModeCreate {
		p := model.PriorityMedium
		f.Priority = &p
	}

	// dueDate
	if v, ok := present(raw, "dueDate"); ok || mode == ModeCreate {
		s, isString := v.(string)
		if !isString || strings.TrimSpace(s) == "" {
			return f, model.NewValidationError("dueDate required")
		}
		due, parsed := ParseTimestamp(s)
		if !parsed {
			return f, model.NewValidationError("dueDate must be a valid date")
		}
		f.DueDate = &due
	}

	// tags
	if v, ok := present(raw, "tags"); ok {
		tags, err := stringList(v, "tags")
		if err != nil {
			return f, err
		}
		f.Tags = NormalizeTags(tags)
		f.HasTags = true
	}

	// recurrence; an explicit null clears it
	if v, exists := raw["recurrence"]; exists {
		r, err := recurrence(v)
		if err != nil {
			return f, err
		}
		f.Recurrence = r
		f.HasRecurrence = true
	}

	// dependencies
	if v, ok := present(raw, "dependencies"); ok {
		deps, err := stringList(v, "dependencies")
		if err != nil {
			return f, err
		}
		f.Dependencies = NormalizeDependencies(deps)
		f.HasDependencies = true
	}

	return f, nil
}

// NormalizeTags trims tags and removes case-insensitive duplicates,
// keeping the first occurrence and its casing. Empty tags are dropped.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// NormalizeDependencies trims ids and removes exact duplicates, keeping order.
func NormalizeDependencies(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// present returns the value for key, treating an explicit null as absent.
func present(raw map[string]any, key string) (any, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func coerceID(v any) (string, error) {
	switch id := v.(type) {
	case string:
		id = strings.TrimSpace(id)
		if id != "" {
			return id, nil
		}
	case float64:
		if id == math.Trunc(id) && !math.IsInf(id, 0) {
			return strconv.FormatFloat(id, 'f', -1, 64), nil
		}
	case int:
		return strconv.Itoa(id), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	}
	return "", model.NewValidationError("id required")
}

func enumValue(v any, field, rule string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", model.NewValidationError(field + " must be a string")
	}
	if err := validate.Var(s, rule); err != nil {
		return "", model.NewValidationError(fmt.Sprintf("invalid %s %q", field, s))
	}
	return s, nil
}

func stringList(v any, field string) ([]string, error) {
	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []string:
		items = make([]any, len(list))
		for i, s := range list {
			items[i] = s
		}
	default:
		return nil, model.NewValidationError(field + " must be an array")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, model.NewValidationError(field + " must contain non-empty strings")
		}
		out = append(out, s)
	}
	return out, nil
}

func recurrence(v any) (*model.Recurrence, error) {
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, model.NewValidationError("recurrence must be an object")
	}

	freq, err := enumValue(obj["frequency"], "recurrence frequency", "oneof=daily weekly monthly custom")
	if err != nil {
		return nil, err
	}
	r := &model.Recurrence{Frequency: model.Frequency(freq)}

	if r.Frequency == model.FrequencyCustom {
		n, ok := wholeNumber(obj["daysInterval"])
		if !ok || n < 1 {
			return nil, model.NewValidationError("daysInterval must be a number >= 1 for custom recurrence")
		}
		if n > MaxDaysInterval {
			return nil, model.NewValidationError(fmt.Sprintf("daysInterval must be at most %d", MaxDaysInterval))
		}
		r.DaysInterval = n
	}

	if end, ok := present(obj, "endDate"); ok {
		s, isString := end.(string)
		if !isString {
			return nil, model.NewValidationError("recurrence endDate must be a string")
		}
		r.EndDate = strings.TrimSpace(s)
	}

	return r, nil
}

func wholeNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		// saturate instead of letting the conversion overflow
		if n >= math.MaxInt64 {
			return math.MaxInt, true
		}
		if n <= math.MinInt64 {
			return math.MinInt, true
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}
