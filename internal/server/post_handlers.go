package server

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/services"
	"github.com/terraconstructs/skillshare/internal/services/posts"
	"github.com/terraconstructs/skillshare/internal/services/validation"
)

// PostService defines the post operations needed by the HTTP handlers.
type PostService interface {
	Create(ctx context.Context, input posts.Input) (*models.Post, error)
	CreateWithImages(ctx context.Context, description string, files []posts.Upload) (*models.Post, error)
	CreateSystem(ctx context.Context, input posts.Input) (*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	ListMine(ctx context.Context) ([]models.Post, error)
	Feed(ctx context.Context) ([]models.Post, error)
	Update(ctx context.Context, id string, update posts.Update) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	RemoveImage(ctx context.Context, id, url string) (*models.Post, error)
	Like(ctx context.Context, id string) (*models.Post, error)
	Unlike(ctx context.Context, id string) (*models.Post, error)
}

var _ PostService = (*posts.Service)(nil)

// PostRequest is the body of POST /api/posts and POST /api/admin/posts.
type PostRequest struct {
	Description string   `json:"description"`
	ImageURLs   []string `json:"image_urls"`
	VideoURL    string   `json:"video_url"`
}

// PostUpdateRequest is the body of PUT /api/posts/{id}. Absent fields are
// left unchanged.
type PostUpdateRequest struct {
	Description *string   `json:"description"`
	ImageURLs   *[]string `json:"image_urls"`
	VideoURL    *string   `json:"video_url"`
}

// PostHandlers serves posts and likes.
type PostHandlers struct {
	posts     PostService
	validator validation.Validator
}

// NewPostHandlers creates the post handler set.
func NewPostHandlers(svc PostService, v validation.Validator) *PostHandlers {
	return &PostHandlers{posts: svc, validator: v}
}

// Routes mounts the handlers on r.
func (h *PostHandlers) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Post("/with-images", h.CreateWithImages)
	r.Get("/", h.List)
	r.Get("/mine", h.ListMine)
	r.Get("/feed", h.Feed)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Delete("/{id}/images", h.RemoveImage)
	r.Post("/{id}/like", h.Like)
	r.Delete("/{id}/like", h.Unlike)
}

// Create handles POST /api/posts.
func (h *PostHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaPostCreate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	post, err := h.posts.Create(r.Context(), posts.Input(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPostResponse(post))
}

// CreateSystem handles POST /api/admin/posts.
func (h *PostHandlers) CreateSystem(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaPostCreate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	post, err := h.posts.CreateSystem(r.Context(), posts.Input(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPostResponse(post))
}

// CreateWithImages handles POST /api/posts/with-images. The multipart form
// carries a description field and up to MaxImagesPerPost files.
func (h *PostHandlers) CreateWithImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, posts.MaxImagesPerPost*MaxImageBytes+maxBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeUploadError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var headers []*multipart.FileHeader
	headers = append(headers, r.MultipartForm.File["files"]...)
	headers = append(headers, r.MultipartForm.File["files[]"]...)
	uploads := make([]posts.Upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > MaxImageBytes {
			writeMessage(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("%s exceeds %d bytes", fh.Filename, MaxImageBytes))
			return
		}
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, fmt.Errorf("open upload: %w", err))
			return
		}
		defer f.Close()
		uploads = append(uploads, posts.Upload{Filename: fh.Filename, Body: f})
	}

	post, err := h.posts.CreateWithImages(r.Context(), r.FormValue("description"), uploads)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPostResponse(post))
}

// List handles GET /api/posts.
func (h *PostHandlers) List(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.posts.List)
}

// ListMine handles GET /api/posts/mine.
func (h *PostHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.posts.ListMine)
}

// Feed handles GET /api/posts/feed.
func (h *PostHandlers) Feed(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.posts.Feed)
}

// ListAll handles GET /api/public/posts.
func (h *PostHandlers) ListAll(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.posts.ListAll)
}

func (h *PostHandlers) writeList(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]models.Post, error)) {
	items, err := list(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostList(items))
}

// Get handles GET /api/posts/{id}.
func (h *PostHandlers) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostResponse(post))
}

// Update handles PUT /api/posts/{id}.
func (h *PostHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req PostUpdateRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaPostUpdate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	post, err := h.posts.Update(r.Context(), chi.URLParam(r, "id"), posts.Update(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostResponse(post))
}

// Delete handles DELETE /api/posts/{id}.
func (h *PostHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveImage handles DELETE /api/posts/{id}/images?url=.
func (h *PostHandlers) RemoveImage(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, r, services.InvalidInput("url query parameter is required"))
		return
	}
	post, err := h.posts.RemoveImage(r.Context(), chi.URLParam(r, "id"), url)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostResponse(post))
}

// Like handles POST /api/posts/{id}/like.
func (h *PostHandlers) Like(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Like(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostResponse(post))
}

// Unlike handles DELETE /api/posts/{id}/like.
func (h *PostHandlers) Unlike(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Unlike(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostResponse(post))
}

// writeUploadError reports multipart parsing failures.
func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, multipart.ErrMessageTooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, "upload too large")
	case errors.Is(err, http.ErrNotMultipart):
		writeError(w, r, services.InvalidInput("expected a multipart/form-data body"))
	default:
		writeError(w, r, services.InvalidInput("malformed multipart body"))
	}
}
