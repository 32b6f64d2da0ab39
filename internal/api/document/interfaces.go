package document

import (
	"context"
	"mime/multipart"

	"github.com/futig/ragchat-backend/internal/entity"
)

type DocumentUsecase interface {
	Upload(ctx context.Context, files []*multipart.FileHeader) (*entity.UploadResponse, error)
	List(ctx context.Context) (*entity.DocumentListResponse, error)
	Delete(ctx context.Context, source string) (*entity.DeleteDocumentResponse, error)
	Reset(ctx context.Context) error
}
