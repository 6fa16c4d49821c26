package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/services/comments"
	"github.com/terraconstructs/skillshare/internal/services/validation"
)

// CommentService defines the comment operations needed by the HTTP handlers.
type CommentService interface {
	Create(ctx context.Context, postID, content string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	Update(ctx context.Context, id, content string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

var _ CommentService = (*comments.Service)(nil)

// CommentRequest is the body of comment create and update.
type CommentRequest struct {
	Content string `json:"content"`
}

// CommentHandlers serves comments on posts.
type CommentHandlers struct {
	comments  CommentService
	validator validation.Validator
}

// NewCommentHandlers creates the comment handler set.
func NewCommentHandlers(svc CommentService, v validation.Validator) *CommentHandlers {
	return &CommentHandlers{comments: svc, validator: v}
}

// Routes mounts the handlers on r.
func (h *CommentHandlers) Routes(r chi.Router) {
	r.Post("/posts/{postId}", h.Create)
	r.Get("/posts/{postId}", h.List)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// Create handles POST /api/comments/posts/{postId}.
func (h *CommentHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaComment, &req); err != nil {
		writeError(w, r, err)
		return
	}
	comment, err := h.comments.Create(r.Context(), chi.URLParam(r, "postId"), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCommentResponse(comment))
}

// List handles GET /api/comments/posts/{postId}.
func (h *CommentHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.comments.ListByPost(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]CommentResponse, 0, len(items))
	for i := range items {
		out = append(out, newCommentResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Update handles PUT /api/comments/{id}.
func (h *CommentHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaComment, &req); err != nil {
		writeError(w, r, err)
		return
	}
	comment, err := h.comments.Update(r.Context(), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCommentResponse(comment))
}

// Delete handles DELETE /api/comments/{id}.
func (h *CommentHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
