package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/unisoruyor/apiserver/config"
)

// ErrNotFound is returned when an object key does not exist.
var ErrNotFound = errors.New("object not found")

// attachmentCacheControl is set on every stored object. Keys embed a fresh
// uuid, so an object never changes once written.
const attachmentCacheControl = "private, max-age=31536000, immutable"

// Backend is the set of object operations attachment storage needs.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Attachments stores uploaded question and answer files.
type Attachments struct {
	backend Backend
}

func NewAttachments(backend Backend) *Attachments {
	return &Attachments{backend: backend}
}

// Open builds the backend selected by cfg.Storage.Backend and makes sure
// its bucket exists.
func Open(ctx context.Context, cfg config.Config) (*Attachments, error) {
	var (
		backend Backend
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "", "minio":
		backend, err = NewMinioClient(cfg.Minio)
	case "gcs":
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := backend.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}
	return NewAttachments(backend), nil
}

func (a *Attachments) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return a.backend.Put(ctx, key, r, size, contentType)
}

// Get opens an object. Missing keys return ErrNotFound.
func (a *Attachments) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return a.backend.Get(ctx, key)
}

func (a *Attachments) Delete(ctx context.Context, key string) error {
	return a.backend.Delete(ctx, key)
}

func (a *Attachments) Bucket() string {
	return a.backend.Bucket()
}
