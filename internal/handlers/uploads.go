package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/types"
)

const (
	formFieldFile      = "file"
	maxMultipartMemory = 8 << 20
	multipartOverhead  = 1 << 20
)

// Uploads is the attachment service surface used by the HTTP layer.
type Uploads interface {
	Upload(ctx context.Context, user types.User, in services.UploadInput) (types.FileUpload, error)
	Open(ctx context.Context, id string) (types.FileUpload, io.ReadCloser, error)
	MaxBytes() int64
	TooLarge() error
}

// UploadHandler accepts attachments and serves them back.
type UploadHandler struct {
	uploads Uploads
}

func NewUploadHandler(uploads Uploads) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// UploadRouter registers POST /upload and GET /files/{fileID}.
func UploadRouter(r chi.Router, uploads Uploads, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUploadHandler(uploads)

	r.With(authMiddleware).Post("/upload", handler.Upload)
	r.Get("/files/{fileID}", handler.Download)
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, r, h.uploads.TooLarge())
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Dosya seçilmedi")
		return
	}
	defer file.Close()

	uploaded, err := h.uploads.Upload(r.Context(), user, services.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploaded)
}

// Download streams a stored attachment.
func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	file, body, err := h.uploads.Open(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", file.FileType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.FileSize, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.OriginalFilename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.WarnContext(r.Context(), "failed to stream file", "file_id", file.ID, "error", err)
	}
}
