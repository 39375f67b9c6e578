package ports

import (
	"context"

	"github.com/jmoiron/sqlx"

	"docvault-web-server/internal/model"
)

// DocumentRepository : SQL слой авторитетных записей о документах
type DocumentRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error
	GetByUUID(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (*model.Document, error)
	ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string) ([]model.Document, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, documentUUID string) error
	UpdateDownloadURL(ctx context.Context, exec sqlx.ExtContext, documentUUID string, downloadURL string) error
	SumSizeByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string) (int64, error)
}

// UploadInput : данные загружаемого документа
type UploadInput struct {
	OwnerUUID string
	Filename  string
	MimeType  string
	Data      []byte
}

// DocumentListing : дескриптор вместе со свежей подписанной ссылкой
type DocumentListing struct {
	Descriptor model.DocumentDescriptor `json:"descriptor"`
	Access     *model.SignedAccess      `json:"access,omitempty"`
}

type DocumentService interface {
	UploadDocument(ctx context.Context, input UploadInput) (*model.DocumentDescriptor, error)
	DeleteDocument(ctx context.Context, documentUUID string, callerUUID string) error
	MyDocuments(ctx context.Context, userUUID string) ([]DocumentListing, error)
	ToggleVisibility(ctx context.Context, documentUUID string, callerUUID string, visible bool) (model.DescriptorList, error)
	GetDocumentsByPin(ctx context.Context, userUUID string, pin string) ([]DocumentListing, error)
}
