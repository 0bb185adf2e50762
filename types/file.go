package types

import "time"

// FileUpload is the metadata of an uploaded attachment.
// The object itself lives in attachment storage under FilePath.
type FileUpload struct {
	// ID is a random UUID assigned at upload time.
	ID string `json:"file_id" db:"id"`

	// Filename is the stored object name (UUID plus extension).
	Filename string `json:"filename" db:"filename"`

	// OriginalFilename is the name the client sent.
	OriginalFilename string `json:"original_filename" db:"original_filename"`

	// FilePath is the object storage key.
	FilePath string `json:"-" db:"file_path"`

	// FileType is the accepted MIME type.
	FileType string `json:"file_type" db:"file_type"`

	// FileSize is the size in bytes.
	FileSize int64 `json:"file_size" db:"file_size"`

	// UploadedBy references the uploading user.
	UploadedBy int `json:"uploaded_by" db:"uploaded_by"`

	// UploadURL is the API path the file is served from.
	UploadURL string `json:"upload_url" db:"-"`

	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}
