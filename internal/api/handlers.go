package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/discernment180-api/internal/config"
	"github.com/zapponejosh/discernment180-api/internal/curriculum"
	"github.com/zapponejosh/discernment180-api/internal/database"
	"github.com/zapponejosh/discernment180-api/internal/logger"
	"github.com/zapponejosh/discernment180-api/internal/progress"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db      *database.DB
	tracker *progress.Tracker
	cfg     *config.Config
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:      db,
		tracker: progress.NewTracker(db),
		cfg:     cfg,
		logger:  logger,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Health(r.Context()); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

// tocEntry is one line of the table of contents.
type tocEntry struct {
	CurriculumOrder int     `json:"curriculum_order"`
	Title           string  `json:"title"`
	Subtitle        *string `json:"subtitle,omitempty"`
	curriculum.Classification
}

// ListContent handles GET /api/v1/content
func (h *Handlers) ListContent(w http.ResponseWriter, r *http.Request) {
	items, err := h.db.ListContent(r.Context())
	if err != nil {
		logger.Error(r.Context(), "failed to list content", err)
		WriteInternalError(w, "Failed to retrieve content")
		return
	}

	toc := make([]tocEntry, 0, len(items))
	for _, it := range items {
		toc = append(toc, tocEntry{
			CurriculumOrder: it.CurriculumOrder,
			Title:           it.Title,
			Subtitle:        it.Subtitle,
			Classification:  curriculum.Classify(it.Day, it.Title, it.IsFirst),
		})
	}

	WriteSuccess(w, map[string]any{
		"items": toc,
		"count": len(toc),
	})
}

// GetCurrentContent handles GET /api/v1/content/current
func (h *Handlers) GetCurrentContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.tracker.Resolve(r.Context(), GetSession(r), nil)
	if err != nil {
		h.writeTrackerError(w, r, err, "Failed to retrieve content")
		return
	}
	WriteSuccess(w, content)
}

// GetDayContent handles GET /api/v1/content/day/{day}
func (h *Handlers) GetDayContent(w http.ResponseWriter, r *http.Request) {
	day, ok := intParam(w, r, "day")
	if !ok {
		return
	}

	content, err := h.tracker.Resolve(r.Context(), GetSession(r), &day)
	if err != nil {
		h.writeTrackerError(w, r, err, "Failed to retrieve content")
		return
	}
	WriteSuccess(w, content)
}

// GetCurrentUser handles GET /api/v1/me
func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, GetUser(r))
}

// GetMyAPIKeys handles GET /api/v1/me/keys
func (h *Handlers) GetMyAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.db.ListAPIKeys(r.Context(), GetUser(r).ID)
	if err != nil {
		logger.Error(r.Context(), "failed to list api keys", err)
		WriteInternalError(w, "Failed to retrieve API keys")
		return
	}

	WriteSuccess(w, map[string]any{
		"keys":  keys,
		"count": len(keys),
	})
}

// GetProgress handles GET /api/v1/progress
func (h *Handlers) GetProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.tracker.Get(r.Context(), GetSession(r))
	if err != nil {
		h.writeTrackerError(w, r, err, "Failed to retrieve progress")
		return
	}
	WriteSuccess(w, p)
}

// GetProgressStats handles GET /api/v1/progress/stats
func (h *Handlers) GetProgressStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tracker.Stats(r.Context(), GetSession(r))
	if err != nil {
		h.writeTrackerError(w, r, err, "Failed to retrieve statistics")
		return
	}
	WriteSuccess(w, stats)
}

// SetDayCompletion handles PUT /api/v1/progress/days/{day}
func (h *Handlers) SetDayCompletion(w http.ResponseWriter, r *http.Request) {
	day, ok := intParam(w, r, "day")
	if !ok {
		return
	}

	var req struct {
		Complete *bool `json:"complete"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.Complete == nil {
		WriteBadRequest(w, "complete is required")
		return
	}

	p, err := h.tracker.SetCompletion(r.Context(), GetSession(r), day, *req.Complete)
	if err != nil {
		h.writeTrackerError(w, r, err, "Failed to update completion")
		return
	}
	WriteSuccess(w, p)
}

// AdvanceProgress handles POST /api/v1/progress/advance
func (h *Handlers) AdvanceProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.tracker.Advance(r.Context(), GetSession(r))
	if err != nil {
		h.writeTrackerError(w, r, err, "Failed to advance progress")
		return
	}
	WriteSuccess(w, p)
}

// BeginProgress handles POST /api/v1/progress/begin
func (h *Handlers) BeginProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.tracker.Begin(r.Context(), GetSession(r))
	if err != nil {
		h.writeTrackerError(w, r, err, "Failed to restart program")
		return
	}
	WriteSuccess(w, p)
}

// writeTrackerError maps tracker and store errors to responses. Anything
// unrecognized is logged once here and reported as a generic failure.
func (h *Handlers) writeTrackerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, progress.ErrNoContent):
		WriteError(w, http.StatusNotFound, "No content available", "NO_CONTENT")
	case errors.Is(err, progress.ErrInvalidDay), errors.Is(err, progress.ErrInvalidWeek):
		WriteBadRequest(w, err.Error())
	case errors.Is(err, progress.ErrNotCompletable):
		WriteError(w, http.StatusConflict, "Content cannot be marked complete", "NOT_COMPLETABLE")
	case errors.Is(err, progress.ErrNotSkippable):
		WriteError(w, http.StatusConflict, "Daily content must be completed", "NOT_SKIPPABLE")
	case database.IsNotFound(err):
		WriteNotFound(w, "Record not found")
	default:
		logger.Error(r.Context(), msg, err, slog.String("path", r.URL.Path))
		WriteInternalError(w, msg)
	}
}

// intParam parses an integer URL parameter, writing a 400 on failure.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid %s: %q", name, raw))
		return 0, false
	}
	return v, true
}

// decodeJSON decodes JSON request body.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()

	return json.NewDecoder(r.Body).Decode(v)
}
