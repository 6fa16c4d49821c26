package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/services/feeds"
	"github.com/terraconstructs/skillshare/internal/services/validation"
)

// FeedService defines the feed operations needed by the HTTP handlers.
type FeedService interface {
	Create(ctx context.Context, input feeds.Input) (*models.Feed, error)
	List(ctx context.Context) ([]models.Feed, error)
	ListAll(ctx context.Context) ([]models.Feed, error)
	Get(ctx context.Context, id string) (*models.Feed, error)
	Posts(ctx context.Context, id string) ([]models.Post, error)
	Update(ctx context.Context, id string, input feeds.Input) (*models.Feed, error)
	Delete(ctx context.Context, id string) error
	AddPost(ctx context.Context, feedID, postID string) error
	RemovePost(ctx context.Context, feedID, postID string) error
}

var _ FeedService = (*feeds.Service)(nil)

// FeedRequest is the body of feed create and update. On update, absent
// fields keep their current value.
type FeedRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// FeedHandlers serves feeds and feed membership.
type FeedHandlers struct {
	feeds     FeedService
	validator validation.Validator
}

// NewFeedHandlers creates the feed handler set.
func NewFeedHandlers(svc FeedService, v validation.Validator) *FeedHandlers {
	return &FeedHandlers{feeds: svc, validator: v}
}

// Routes mounts the handlers on r.
func (h *FeedHandlers) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/posts/{postId}", h.AddPost)
	r.Delete("/{id}/posts/{postId}", h.RemovePost)
}

// Create handles POST /api/feeds.
func (h *FeedHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req FeedRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaFeedCreate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	feed, err := h.feeds.Create(r.Context(), req.merge(feeds.Input{}))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newFeedResponse(feed))
}

// List handles GET /api/feeds.
func (h *FeedHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.feeds.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFeedList(items))
}

// ListAll handles GET /api/public/feeds.
func (h *FeedHandlers) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.feeds.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFeedList(items))
}

// Get handles GET /api/feeds/{id}, returning the feed with its posts.
func (h *FeedHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	feed, err := h.feeds.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.feeds.Posts(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := newFeedResponse(feed)
	resp.Posts = newPostList(items)
	writeJSON(w, http.StatusOK, resp)
}

// Update handles PUT /api/feeds/{id}.
func (h *FeedHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req FeedRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaFeedUpdate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	current, err := h.feeds.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	feed, err := h.feeds.Update(r.Context(), id, req.merge(feeds.Input{Name: current.Name, Description: current.Description}))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFeedResponse(feed))
}

// Delete handles DELETE /api/feeds/{id}.
func (h *FeedHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.feeds.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPost handles POST /api/feeds/{id}/posts/{postId}.
func (h *FeedHandlers) AddPost(w http.ResponseWriter, r *http.Request) {
	if err := h.feeds.AddPost(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "postId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemovePost handles DELETE /api/feeds/{id}/posts/{postId}.
func (h *FeedHandlers) RemovePost(w http.ResponseWriter, r *http.Request) {
	if err := h.feeds.RemovePost(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "postId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req FeedRequest) merge(in feeds.Input) feeds.Input {
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	return in
}
