package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unisoruyor/apiserver/config"
)

type memoryBackend struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryBackend) EnsureBucket(context.Context) error { return nil }

func (m *memoryBackend) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryBackend) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryBackend) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryBackend) Bucket() string { return "unisoruyor" }

func TestAttachments_RoundTrip(t *testing.T) {
	backend := newMemoryBackend()
	a := NewAttachments(backend)
	ctx := context.Background()

	require.NoError(t, a.Put(ctx, "uploads/1/x.txt", bytes.NewReader([]byte("merhaba")), 7, "text/plain"))
	assert.Equal(t, "text/plain", backend.types["uploads/1/x.txt"])

	body, err := a.Get(ctx, "uploads/1/x.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "merhaba", string(data))

	require.NoError(t, a.Delete(ctx, "uploads/1/x.txt"))
	_, err = a.Get(ctx, "uploads/1/x.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "unisoruyor", a.Bucket())
}

func TestOpen_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, config.Config{Storage: config.StorageConfig{Backend: "ftp"}})
	assert.EqualError(t, err, `unknown storage backend "ftp"`)

	_, err = Open(ctx, config.Config{Storage: config.StorageConfig{Backend: "minio"}})
	assert.EqualError(t, err, "minio endpoint is required")

	_, err = Open(ctx, config.Config{
		Storage: config.StorageConfig{Backend: "minio"},
		Minio:   config.MinioConfig{Endpoint: "localhost:9000", Bucket: "b"},
	})
	assert.EqualError(t, err, "minio access key and secret key are required")

	_, err = Open(ctx, config.Config{Storage: config.StorageConfig{Backend: "gcs"}})
	assert.EqualError(t, err, "gcs bucket is required")
}
