package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/unisoruyor/apiserver/internal/store"
	"github.com/unisoruyor/apiserver/types"
)

const maxAttachments = 10

// FileRepository defines persistence operations for uploaded files.
type FileRepository interface {
	Create(ctx context.Context, file types.FileUpload) (types.FileUpload, error)
	Get(ctx context.Context, id string) (types.FileUpload, error)
	Delete(ctx context.Context, id string) error
	AttachToQuestion(ctx context.Context, questionID int, fileIDs []string) error
	AttachToAnswer(ctx context.Context, answerID int, fileIDs []string) error
	ListByQuestion(ctx context.Context, questionID int) ([]types.FileUpload, error)
	ListByAnswers(ctx context.Context, answerIDs []int) (map[int][]types.FileUpload, error)
}

// ownedAttachments normalizes the requested ids and checks that every file
// exists and was uploaded by the user.
func ownedAttachments(ctx context.Context, files FileRepository, userID int, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(ids))
	owned := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, ErrValidation(msgFileNotFound)
		}
		key := id.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		file, err := files.Get(ctx, key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrValidation(msgFileNotFound)
			}
			return nil, err
		}
		if file.UploadedBy != userID {
			return nil, ErrValidation(msgFileNotFound)
		}
		owned = append(owned, key)
	}

	if len(owned) > maxAttachments {
		return nil, ErrValidation("En fazla 10 dosya eklenebilir")
	}
	return owned, nil
}

// withURLs fills the API path each file is served from.
func withURLs(files []types.FileUpload) []types.FileUpload {
	for i := range files {
		files[i].UploadURL = fileURL(files[i].ID)
	}
	return files
}

func fileURL(id string) string {
	return "/files/" + id
}
