package ports

import (
	"context"

	"docvault-web-server/internal/model"
)

// S3Storage : объектное хранилище
type S3Storage interface {
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	// StatObject : размер объекта в байтах; для singleton-ресурсов
	// (аватар) хранилище — источник истины о размере
	StatObject(ctx context.Context, key string) (int64, error)
	// IssueReadURL : подписанная ссылка на чтение с фиксированным сроком жизни
	IssueReadURL(ctx context.Context, key string) (*model.SignedAccess, error)
}
