package ports

import (
	"context"

	"docvault-web-server/internal/model"
)

// CacheRepository : Redis слой, кэш списков дескрипторов на чтение
type CacheRepository interface {
	SetUserDocuments(ctx context.Context, userUUID string, documents model.DescriptorList) error
	GetUserDocuments(ctx context.Context, userUUID string) (model.DescriptorList, error)
	InvalidateUserDocuments(ctx context.Context, userUUID string) error
}
