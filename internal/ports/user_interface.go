package ports

import (
	"context"

	"github.com/jmoiron/sqlx"

	"docvault-web-server/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error)
	FindByLogin(ctx context.Context, exec sqlx.ExtContext, login string) (*model.User, error)
	UpdatePassword(ctx context.Context, exec sqlx.ExtContext, uuid, newPasswordHash string) error
	DeleteUser(ctx context.Context, exec sqlx.ExtContext, uuid string) error
	ListUsers(ctx context.Context, exec sqlx.ExtContext, cursor string, limit int) ([]*model.User, string, error)
	Exists(ctx context.Context, exec sqlx.ExtContext, uuid string) (bool, error)

	// AppendDocument : атомарно дописывает дескриптор в JSONB массив и
	// инкрементирует total_size одним UPDATE
	AppendDocument(ctx context.Context, exec sqlx.ExtContext, userUUID string, descriptor model.DocumentDescriptor, deltaBytes int64) error
	// ReplaceDocuments : перезаписывает весь список и сдвигает total_size
	// на deltaBytes с нижней границей ноль
	ReplaceDocuments(ctx context.Context, exec sqlx.ExtContext, userUUID string, documents model.DescriptorList, deltaBytes int64) error
	SetProfilePicture(ctx context.Context, exec sqlx.ExtContext, userUUID string, path, url string, deltaBytes int64) error
	SetMasterPin(ctx context.Context, exec sqlx.ExtContext, userUUID string, pin *string) error
	SetTotalSize(ctx context.Context, exec sqlx.ExtContext, userUUID string, totalSize int64) error
}

// ProfilePictureInput : данные нового аватара
type ProfilePictureInput struct {
	Filename string
	MimeType string
	Data     []byte
}

type UserService interface {
	Register(ctx context.Context, adminToken string, login string, password string, ipAddress string) (*model.TokensPair, error)
	GetUser(ctx context.Context, uuid string) (*model.User, error)
	UpdatePassword(ctx context.Context, uuid string, newPassword string) error
	DeleteUser(ctx context.Context, uuid string) error
	ListUsers(ctx context.Context, adminToken string, cursor string, limit int) ([]*model.User, string, error)
	ReplaceProfilePicture(ctx context.Context, userUUID string, input ProfilePictureInput) (*model.SignedAccess, error)
	SetMasterPin(ctx context.Context, userUUID string, pin string) error
}
