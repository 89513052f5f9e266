package engine

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"github.com/VeraLinno/Task-management-utility/internal/validation"
	"go.opentelemetry.io/otel/attribute"
)

// SortField names the task attribute to order by.
type SortField string

const (
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
	SortByTitle     SortField = "title"
	SortByStatus    SortField = "status"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortConfig selects an ordering. Ties always fall back to the default order.
type SortConfig struct {
	Field     SortField
	Direction SortDirection
}

// ParseSortConfig builds a SortConfig from user input. An empty field
// returns nil, meaning the default order.
func ParseSortConfig(field, direction string) (*SortConfig, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}
	cfg := &SortConfig{Field: SortField(field), Direction: Ascending}
	switch cfg.Field {
	case SortByDueDate, SortByPriority, SortByTitle, SortByStatus, SortByCreatedAt, SortByUpdatedAt:
	default:
		return nil, model.NewValidationError(fmt.Sprintf("invalid sort field %q", field))
	}
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
	case "desc":
		cfg.Direction = Descending
	default:
		return nil, model.NewValidationError(fmt.Sprintf("invalid sort direction %q", direction))
	}
	return cfg, nil
}

// Criteria filters tasks. Zero values match everything; set fields are ANDed.
type Criteria struct {
	Status   model.Status
	Priority model.Priority
	// Tag matches any task tag, case-insensitively.
	Tag string
	// DueBeforeISO and DueAfterISO are inclusive bounds.
	DueBeforeISO string
	DueAfterISO  string
	// Search is a case-insensitive substring of the title or description.
	Search string
}

// Query returns the tasks matching c, ordered by sortCfg or the default order.
func (e *Engine) Query(ctx context.Context, c Criteria, sortCfg *SortConfig) (out []model.Task, err error) {
	ctx, span := tracer.Start(ctx, "Engine.Query")
	defer func() { e.finish(ctx, span, "query", err) }()

	match, err := c.matcher()
	if err != nil {
		return nil, err
	}

	tasks, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	out = make([]model.Task, 0, len(tasks))
	for i := range tasks {
		if match(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	sortTasks(out, sortCfg)

	span.SetAttributes(attribute.Int("task.count", len(out)))
	return out, nil
}

func (c Criteria) matcher() (func(*model.Task) bool, error) {
	var before, after *time.Time
	if s := strings.TrimSpace(c.DueBeforeISO); s != "" {
		t, ok := validation.ParseTimestamp(s)
		if !ok {
			return nil, model.NewValidationError("dueBefore must be a valid date")
		}
		before = &t
	}
	if s := strings.TrimSpace(c.DueAfterISO); s != "" {
		t, ok := validation.ParseTimestamp(s)
		if !ok {
			return nil, model.NewValidationError("dueAfter must be a valid date")
		}
		after = &t
	}
	tag := strings.ToLower(strings.TrimSpace(c.Tag))
	search := strings.ToLower(strings.TrimSpace(c.Search))

	return func(t *model.Task) bool {
		if c.Status != "" && t.Status != c.Status {
			return false
		}
		if c.Priority != "" && t.Priority != c.Priority {
			return false
		}
		if tag != "" && !slices.ContainsFunc(t.Tags, func(s string) bool { return strings.ToLower(s) == tag }) {
			return false
		}
		if before != nil && t.DueDate.After(*before) {
			return false
		}
		if after != nil && t.DueDate.Before(*after) {
			return false
		}
		if search != "" {
			// the separator keeps a match from spanning title and description
			haystack := strings.ToLower(t.Title + "\n" + t.Description)
			if !strings.Contains(haystack, search) {
				return false
			}
		}
		return true
	}, nil
}

func sortTasks(tasks []model.Task, cfg *SortConfig) {
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		if cfg != nil && cfg.Field != "" {
			c := compareField(a, b, cfg.Field)
			if cfg.Direction == Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return compareDefault(a, b)
	})
}

// compareDefault orders by due date, then priority (high first), then title.
func compareDefault(a, b model.Task) int {
	if c := a.DueDate.Compare(b.DueDate); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
		return c
	}
	return strings.Compare(a.Title, b.Title)
}

func compareField(a, b model.Task, field SortField) int {
	switch field {
	case SortByDueDate:
		return a.DueDate.Compare(b.DueDate)
	case SortByPriority:
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	case SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortByStatus:
		return cmp.Compare(a.Status.Rank(), b.Status.Rank())
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}
