package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/types"
)

type stubUploads struct {
	maxBytes int64
	received services.UploadInput
	body     []byte
	files    map[string]types.FileUpload
}

func (s *stubUploads) Upload(_ context.Context, user types.User, in services.UploadInput) (types.FileUpload, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return types.FileUpload{}, err
	}
	s.received = in
	s.body = data
	return types.FileUpload{
		ID:               "0b8f5c1e-3d59-4a57-9a43-4b7f1f1f2e10",
		Filename:         "0b8f5c1e-3d59-4a57-9a43-4b7f1f1f2e10.pdf",
		OriginalFilename: in.Filename,
		FileType:         "application/pdf",
		FileSize:         in.Size,
		UploadedBy:       user.ID,
		UploadURL:        "/files/0b8f5c1e-3d59-4a57-9a43-4b7f1f1f2e10",
	}, nil
}

func (s *stubUploads) Open(_ context.Context, id string) (types.FileUpload, io.ReadCloser, error) {
	file, ok := s.files[id]
	if !ok {
		return types.FileUpload{}, nil, services.ErrNotFound("Dosya bulunamadı")
	}
	return file, io.NopCloser(strings.NewReader("%PDF-1.7 notlar")), nil
}

func (s *stubUploads) MaxBytes() int64 { return s.maxBytes }

func (s *stubUploads) TooLarge() error {
	return services.ErrTooLarge("Dosya boyutu çok büyük (maksimum 10MB)")
}

func multipartBody(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadRouter(uploads Uploads) *chi.Mux {
	auth, _ := newAuth(testUser(1, "ayse"))
	router := chi.NewRouter()
	UploadRouter(router, uploads, auth.RequireAuth)
	return router
}

func TestUploadHandler_Upload(t *testing.T) {
	uploads := &stubUploads{maxBytes: 10 << 20}
	router := uploadRouter(uploads)
	content := []byte("%PDF-1.7 ders notları")

	body, contentType := multipartBody(t, "file", "notlar.pdf", "application/pdf", content)
	rr := serve(t, router, request{method: http.MethodPost, path: "/upload", raw: body, contentType: contentType})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	body, contentType = multipartBody(t, "file", "notlar.pdf", "application/pdf", content)
	rr = serve(t, router, request{method: http.MethodPost, path: "/upload", raw: body, contentType: contentType, token: tokenFor(t, 1)})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	assert.Equal(t, "notlar.pdf", uploads.received.Filename)
	assert.Equal(t, "application/pdf", uploads.received.ContentType)
	assert.Equal(t, int64(len(content)), uploads.received.Size)
	assert.Equal(t, content, uploads.body)

	resp := decodeBody[map[string]any](t, rr)
	assert.Equal(t, "0b8f5c1e-3d59-4a57-9a43-4b7f1f1f2e10", resp["file_id"])
	assert.Equal(t, "/files/0b8f5c1e-3d59-4a57-9a43-4b7f1f1f2e10", resp["upload_url"])
	assert.NotContains(t, resp, "file_path")
}

func TestUploadHandler_Rejections(t *testing.T) {
	uploads := &stubUploads{maxBytes: 1024}
	router := uploadRouter(uploads)
	token := tokenFor(t, 1)

	body, contentType := multipartBody(t, "file", "buyuk.pdf", "application/pdf", bytes.Repeat([]byte("a"), 3<<20))
	rr := serve(t, router, request{method: http.MethodPost, path: "/upload", raw: body, contentType: contentType, token: token})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, "Dosya boyutu çok büyük (maksimum 10MB)", errorBody(t, rr).Error)

	body, contentType = multipartBody(t, "attachment", "x.pdf", "application/pdf", []byte("%PDF"))
	rr = serve(t, router, request{method: http.MethodPost, path: "/upload", raw: body, contentType: contentType, token: token})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Dosya seçilmedi", errorBody(t, rr).Error)

	rr = serve(t, router, request{method: http.MethodPost, path: "/upload", raw: strings.NewReader("{}"), contentType: "application/json", token: token})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadHandler_Download(t *testing.T) {
	uploads := &stubUploads{files: map[string]types.FileUpload{
		"0b8f5c1e-3d59-4a57-9a43-4b7f1f1f2e10": {
			ID:               "0b8f5c1e-3d59-4a57-9a43-4b7f1f1f2e10",
			OriginalFilename: "ders notları.pdf",
			FileType:         "application/pdf",
			FileSize:         15,
		},
	}}
	router := uploadRouter(uploads)

	rr := serve(t, router, request{method: http.MethodGet, path: "/files/0b8f5c1e-3d59-4a57-9a43-4b7f1f1f2e10"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, "15", rr.Header().Get("Content-Length"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "inline")
	assert.Equal(t, "%PDF-1.7 notlar", rr.Body.String())

	rr = serve(t, router, request{method: http.MethodGet, path: "/files/missing"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Dosya bulunamadı", errorBody(t, rr).Error)
}
