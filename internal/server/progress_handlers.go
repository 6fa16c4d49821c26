package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/services/progress"
	"github.com/terraconstructs/skillshare/internal/services/validation"
)

// ProgressService defines the learning progress operations needed by the HTTP handlers.
type ProgressService interface {
	Create(ctx context.Context, input progress.Input) (*models.LearningProgress, error)
	List(ctx context.Context) ([]models.LearningProgress, error)
	ListAll(ctx context.Context) ([]models.LearningProgress, error)
	Get(ctx context.Context, id string) (*models.LearningProgress, error)
	Update(ctx context.Context, id string, input progress.Input) (*models.LearningProgress, error)
	Delete(ctx context.Context, id string) error
}

var _ ProgressService = (*progress.Service)(nil)

// ProgressRequest is the body of learning progress create and update. On
// update, absent fields keep their current value.
type ProgressRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Status          *string `json:"status"`
	Date            *string `json:"date"`
	DurationMinutes *int    `json:"duration_minutes"`
}

// ProgressHandlers serves learning progress entries.
type ProgressHandlers struct {
	progress  ProgressService
	validator validation.Validator
}

// NewProgressHandlers creates the learning progress handler set.
func NewProgressHandlers(svc ProgressService, v validation.Validator) *ProgressHandlers {
	return &ProgressHandlers{progress: svc, validator: v}
}

// Routes mounts the handlers on r.
func (h *ProgressHandlers) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// Create handles POST /api/learning-progress.
func (h *ProgressHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req ProgressRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaProgressCreate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	input, err := req.merge(progress.Input{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.progress.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newProgressResponse(entry))
}

// List handles GET /api/learning-progress.
func (h *ProgressHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.progress.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProgressList(items))
}

// ListAll handles GET /api/public/learning-progress.
func (h *ProgressHandlers) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.progress.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProgressList(items))
}

// Get handles GET /api/learning-progress/{id}.
func (h *ProgressHandlers) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.progress.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProgressResponse(entry))
}

// Update handles PUT /api/learning-progress/{id}.
func (h *ProgressHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req ProgressRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaProgressUpdate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	current, err := h.progress.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	input, err := req.merge(progress.Input{
		Title:           current.Title,
		Description:     current.Description,
		Status:          current.Status,
		Date:            current.Date,
		DurationMinutes: current.DurationMinutes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.progress.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProgressResponse(entry))
}

// Delete handles DELETE /api/learning-progress/{id}.
func (h *ProgressHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.progress.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// merge overlays the fields present in req on in. An empty date clears it.
func (req ProgressRequest) merge(in progress.Input) (progress.Input, error) {
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.DurationMinutes != nil {
		in.DurationMinutes = *req.DurationMinutes
	}
	if req.Date != nil {
		date, err := progress.ParseDate(*req.Date)
		if err != nil {
			return in, err
		}
		in.Date = date
	}
	return in, nil
}
