package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/VeraLinno/Task-management-utility/internal/engine"
	"github.com/VeraLinno/Task-management-utility/internal/model"
	"github.com/VeraLinno/Task-management-utility/internal/telemetry"
	"github.com/VeraLinno/Task-management-utility/internal/validation"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/VeraLinno/Task-management-utility/internal/handler")

const defaultUpcomingLimit = 5

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	engine  *engine.Engine
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(eng *engine.Engine, logger *slog.Logger, metrics *telemetry.Metrics) *TaskHandler {
	return &TaskHandler{
		engine:  eng,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts the versioned API on r.
func (h *TaskHandler) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/tasks", h.Routes())
		r.Get("/stats", h.Stats)
		r.Get("/recurring/upcoming", h.UpcomingRecurring)
		r.Get("/dates/{date}", h.ParseDate)
	})
}

// Routes returns the chi router with task routes.
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/can-complete", h.CanComplete)

	return r
}

// List returns tasks matching the query string filters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	const route = "/api/v1/tasks"

	ctx, span := tracer.Start(ctx, "TaskHandler.List")
	defer span.End()

	q := r.URL.Query()
	sortCfg, err := engine.ParseSortConfig(q.Get("sort"), q.Get("order"))
	if err != nil {
		h.fail(ctx, w, "GET", route, start, err)
		return
	}
	criteria := engine.Criteria{
		Status:       model.Status(q.Get("status")),
		Priority:     model.Priority(q.Get("priority")),
		Tag:          q.Get("tag"),
		DueBeforeISO: q.Get("dueBefore"),
		DueAfterISO:  q.Get("dueAfter"),
		Search:       q.Get("search"),
	}

	h.logger.InfoContext(ctx, "querying tasks")

	tasks, err := h.engine.Query(ctx, criteria, sortCfg)
	if err != nil {
		h.fail(ctx, w, "GET", route, start, err)
		return
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	h.logger.InfoContext(ctx, "tasks listed", slog.Int("count", len(tasks)))

	h.respondJSON(w, http.StatusOK, tasks)
	h.recordMetrics(ctx, "GET", route, http.StatusOK, start)
}

// Create adds a new task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	const route = "/api/v1/tasks"

	ctx, span := tracer.Start(ctx, "TaskHandler.Create")
	defer span.End()

	raw, ok := h.decodeBody(ctx, w, r, "POST", route, start)
	if !ok {
		return
	}

	task, err := h.engine.Create(ctx, raw)
	if err != nil {
		h.fail(ctx, w, "POST", route, start, err)
		return
	}

	span.SetAttributes(attribute.String("task.id", task.ID))
	h.logger.InfoContext(ctx, "task created", slog.String("id", task.ID))

	h.respondJSON(w, http.StatusCreated, task)
	h.recordMetrics(ctx, "POST", route, http.StatusCreated, start)
}

// GetByID returns a task by ID.
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")
	const route = "/api/v1/tasks/{id}"

	ctx, span := tracer.Start(ctx, "TaskHandler.GetByID",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	task, err := h.engine.GetByID(ctx, id)
	if err != nil {
		h.fail(ctx, w, "GET", route, start, err)
		return
	}

	h.respondJSON(w, http.StatusOK, task)
	h.recordMetrics(ctx, "GET", route, http.StatusOK, start)
}

// Update modifies an existing task. The path id overrides any id in the body.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")
	const route = "/api/v1/tasks/{id}"

	ctx, span := tracer.Start(ctx, "TaskHandler.Update",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	raw, ok := h.decodeBody(ctx, w, r, "PUT", route, start)
	if !ok {
		return
	}
	raw["id"] = id

	h.logger.InfoContext(ctx, "updating task", slog.String("id", id))

	task, err := h.engine.Update(ctx, raw)
	if err != nil {
		h.fail(ctx, w, "PUT", route, start, err)
		return
	}

	h.logger.InfoContext(ctx, "task updated", slog.String("id", id))

	h.respondJSON(w, http.StatusOK, task)
	h.recordMetrics(ctx, "PUT", route, http.StatusOK, start)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")
	const route = "/api/v1/tasks/{id}"

	ctx, span := tracer.Start(ctx, "TaskHandler.Delete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	h.logger.InfoContext(ctx, "deleting task", slog.String("id", id))

	if _, err := h.engine.Remove(ctx, id); err != nil {
		h.fail(ctx, w, "DELETE", route, start, err)
		return
	}

	h.logger.InfoContext(ctx, "task deleted", slog.String("id", id))

	w.WriteHeader(http.StatusNoContent)
	h.recordMetrics(ctx, "DELETE", route, http.StatusNoContent, start)
}

// CanComplete reports whether a task's dependencies are all done.
func (h *TaskHandler) CanComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")
	const route = "/api/v1/tasks/{id}/can-complete"

	ctx, span := tracer.Start(ctx, "TaskHandler.CanComplete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	check, err := h.engine.CanCompleteTask(ctx, id)
	if err != nil {
		h.fail(ctx, w, "GET", route, start, err)
		return
	}

	h.respondJSON(w, http.StatusOK, check)
	h.recordMetrics(ctx, "GET", route, http.StatusOK, start)
}

// Stats returns aggregate statistics.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	const route = "/api/v1/stats"

	ctx, span := tracer.Start(ctx, "TaskHandler.Stats")
	defer span.End()

	stats, err := h.engine.GetStatistics(ctx)
	if err != nil {
		h.fail(ctx, w, "GET", route, start, err)
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
	h.recordMetrics(ctx, "GET", route, http.StatusOK, start)
}

// UpcomingRecurring returns the next occurrences of recurring tasks.
func (h *TaskHandler) UpcomingRecurring(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	const route = "/api/v1/recurring/upcoming"

	ctx, span := tracer.Start(ctx, "TaskHandler.UpcomingRecurring")
	defer span.End()

	limit := defaultUpcomingLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.fail(ctx, w, "GET", route, start, model.NewValidationError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	upcoming, err := h.engine.GetUpcomingRecurring(ctx, limit)
	if err != nil {
		h.fail(ctx, w, "GET", route, start, err)
		return
	}

	h.respondJSON(w, http.StatusOK, upcoming)
	h.recordMetrics(ctx, "GET", route, http.StatusOK, start)
}

// ParseDate converts a YYYY-MM-DD path value into a full timestamp.
func (h *TaskHandler) ParseDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	const route = "/api/v1/dates/{date}"

	t, ok := validation.ParseDateInput(chi.URLParam(r, "date"))
	if !ok {
		h.fail(ctx, w, "GET", route, start, model.NewValidationError("date must be a valid YYYY-MM-DD calendar date"))
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"timestamp": t.Format(time.RFC3339)})
	h.recordMetrics(ctx, "GET", route, http.StatusOK, start)
}

// Health returns a health check response.
func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TaskHandler) decodeBody(ctx context.Context, w http.ResponseWriter, r *http.Request, method, route string, start time.Time) (map[string]any, bool) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || raw == nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		h.respondError(w, http.StatusBadRequest, model.KindValidation, "invalid request body", nil)
		h.recordMetrics(ctx, method, route, http.StatusBadRequest, start)
		return nil, false
	}
	return raw, true
}

// fail maps err to a status code by kind and writes the error response.
func (h *TaskHandler) fail(ctx context.Context, w http.ResponseWriter, method, route string, start time.Time, err error) {
	status := http.StatusInternalServerError
	message := "internal error"
	var blockedBy []string

	var te *model.TaskError
	if errors.As(err, &te) {
		message = te.Message
		blockedBy = te.BlockedBy
		switch te.Kind {
		case model.KindValidation:
			status = http.StatusBadRequest
		case model.KindNotFound:
			status = http.StatusNotFound
		case model.KindDependency:
			status = http.StatusConflict
		}
	}

	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "request failed", slog.String("route", route), slog.Any("error", err))
	} else {
		h.logger.WarnContext(ctx, "request rejected", slog.String("route", route), slog.Any("error", err))
	}

	h.respondError(w, status, model.KindOf(err), message, blockedBy)
	h.recordMetrics(ctx, method, route, status, start)
}

func (h *TaskHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

type errorResponse struct {
	Error     string          `json:"error"`
	Kind      model.ErrorKind `json:"kind,omitempty"`
	BlockedBy []string        `json:"blockedBy,omitempty"`
}

func (h *TaskHandler) respondError(w http.ResponseWriter, status int, kind model.ErrorKind, message string, blockedBy []string) {
	h.respondJSON(w, status, errorResponse{Error: message, Kind: kind, BlockedBy: blockedBy})
}

func (h *TaskHandler) recordMetrics(ctx context.Context, method, route string, status int, start time.Time) {
	duration := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	h.metrics.RequestCounter.Add(ctx, 1, attrs)
	h.metrics.RequestDuration.Record(ctx, duration, attrs)
}
