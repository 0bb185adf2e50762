package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/unisoruyor/apiserver/internal/observability"
	"github.com/unisoruyor/apiserver/internal/storage"
	"github.com/unisoruyor/apiserver/internal/store"
	"github.com/unisoruyor/apiserver/types"
)

const (
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDoc  = "application/msword"

	msgUnsupportedType    = "Desteklenmeyen dosya türü"
	msgUploadsUnavailable = "Dosya yükleme şu anda kullanılamıyor"
)

// allowedTypes maps accepted MIME types to the extension used when the
// client filename has none.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
	mimeDoc:           ".doc",
	mimeDocx:          ".docx",
	"text/plain":      ".txt",
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// ObjectStore persists attachment bytes.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// UploadInput describes one uploaded file.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadService stores attachments and their metadata.
type UploadService struct {
	files    FileRepository
	objects  ObjectStore
	maxBytes int64
	now      func() time.Time
}

// NewUploadService builds the service. objects may be nil when no storage
// backend is configured; uploads then fail with KindUnavailable.
func NewUploadService(files FileRepository, objects ObjectStore, maxBytes int64, now func() time.Time) *UploadService {
	if now == nil {
		now = time.Now
	}
	return &UploadService{files: files, objects: objects, maxBytes: maxBytes, now: now}
}

// MaxBytes is the largest accepted file size.
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// TooLarge is the error returned for oversized uploads.
func (s *UploadService) TooLarge() error {
	return ErrTooLarge(fmt.Sprintf("Dosya boyutu çok büyük (maksimum %dMB)", s.maxBytes>>20))
}

// DetectType decides the stored MIME type from the leading bytes and the
// type the client declared. Office documents sniff as zip or octet-stream,
// so for those the declared type is trusted.
func DetectType(head []byte, declared string) (string, bool) {
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(head))
	declared, _, _ = mime.ParseMediaType(strings.TrimSpace(declared))

	if _, ok := allowedTypes[sniffed]; ok {
		return sniffed, true
	}
	switch {
	case declared == mimeDocx && sniffed == "application/zip":
		return mimeDocx, true
	case declared == mimeDoc && sniffed == "application/octet-stream":
		return mimeDoc, true
	}
	return "", false
}

func extensionFor(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if extPattern.MatchString(ext) {
		return ext
	}
	return allowedTypes[contentType]
}

// Upload validates and stores a file for user.
func (s *UploadService) Upload(ctx context.Context, user types.User, in UploadInput) (types.FileUpload, error) {
	if s.objects == nil {
		return types.FileUpload{}, ErrUnavailable(msgUploadsUnavailable)
	}
	if in.Size > s.maxBytes {
		return types.FileUpload{}, s.TooLarge()
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return types.FileUpload{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return types.FileUpload{}, ErrValidation("Dosya boş olamaz")
	}

	contentType, ok := DetectType(head, in.ContentType)
	if !ok {
		return types.FileUpload{}, ErrValidation(msgUnsupportedType)
	}

	id := uuid.NewString()
	original := filepath.Base(strings.ReplaceAll(strings.TrimSpace(in.Filename), "\\", "/"))
	if original == "." || original == "/" {
		original = id
	}
	filename := id + extensionFor(original, contentType)
	key := fmt.Sprintf("uploads/%d/%s", user.ID, filename)

	body := io.MultiReader(bytes.NewReader(head), in.Body)
	if err := s.objects.Put(ctx, key, body, in.Size, contentType); err != nil {
		return types.FileUpload{}, fmt.Errorf("store object: %w", err)
	}

	file, err := s.files.Create(ctx, types.FileUpload{
		ID:               id,
		Filename:         filename,
		OriginalFilename: original,
		FilePath:         key,
		FileType:         contentType,
		FileSize:         in.Size,
		UploadedBy:       user.ID,
		UploadedAt:       s.now().UTC(),
	})
	if err != nil {
		if derr := s.objects.Delete(ctx, key); derr != nil {
			slog.WarnContext(ctx, "failed to remove orphaned object", "key", key, "error", derr)
		}
		return types.FileUpload{}, err
	}

	observability.UploadBytesTotal.Add(float64(in.Size))
	file.UploadURL = fileURL(file.ID)
	return file, nil
}

// Open returns the file metadata and a reader for its bytes.
// The caller must close the reader.
func (s *UploadService) Open(ctx context.Context, id string) (types.FileUpload, io.ReadCloser, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return types.FileUpload{}, nil, ErrNotFound(msgFileNotFound)
	}

	file, err := s.files.Get(ctx, parsed.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.FileUpload{}, nil, ErrNotFound(msgFileNotFound)
		}
		return types.FileUpload{}, nil, err
	}
	if s.objects == nil {
		return types.FileUpload{}, nil, ErrUnavailable(msgUploadsUnavailable)
	}

	body, err := s.objects.Get(ctx, file.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.FileUpload{}, nil, ErrNotFound(msgFileNotFound)
		}
		return types.FileUpload{}, nil, err
	}
	file.UploadURL = fileURL(file.ID)
	return file, body, nil
}
