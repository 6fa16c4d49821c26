package server

import (
	"fmt"
	"net/http"

	"github.com/terraconstructs/skillshare/internal/services"
	"github.com/terraconstructs/skillshare/internal/storage"
)

// Upload size limits per category.
const (
	MaxImageBytes = 10 << 20
	MaxVideoBytes = 100 << 20

	multipartMemory = 32 << 20
)

var uploadLimits = map[storage.Category]int64{
	storage.CategoryImage: MaxImageBytes,
	storage.CategoryVideo: MaxVideoBytes,
}

// UploadResponse is returned by the upload endpoints.
type UploadResponse struct {
	URL string `json:"url"`
}

// FileHandlers accepts uploads into the blob store.
type FileHandlers struct {
	blobs storage.BlobStore
}

// NewFileHandlers creates the file handler set.
func NewFileHandlers(blobs storage.BlobStore) *FileHandlers {
	return &FileHandlers{blobs: blobs}
}

// Upload returns the handler for POST /api/files/upload/{category}. The
// multipart form carries the file in the "file" field.
func (h *FileHandlers) Upload(category storage.Category) http.HandlerFunc {
	limit := uploadLimits[category]
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit+maxBodyBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			writeUploadError(w, r, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, services.InvalidInput("multipart field \"file\" is required"))
			return
		}
		defer file.Close()
		if header.Size > limit {
			writeMessage(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("%s uploads are limited to %d bytes", category, limit))
			return
		}

		url, err := h.blobs.Store(r.Context(), file, header.Filename, category)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, UploadResponse{URL: url})
	}
}

// Delete handles DELETE /api/files?url=.
func (h *FileHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, r, services.InvalidInput("url query parameter is required"))
		return
	}
	if err := h.blobs.Delete(r.Context(), url); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
