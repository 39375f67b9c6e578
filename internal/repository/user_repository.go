package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"docvault-web-server/config"
	"docvault-web-server/internal/model"
	"docvault-web-server/internal/util"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя
func (r *UserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, login, password_hash, total_size, documents)
	VALUES ($1, $2, $3, 0, '[]'::jsonb)
	RETURNING uuid, login, created_at
	`

	createdUser := &model.User{}
	err := exec.QueryRowxContext(ctx, query, user.UUID, user.Login, user.PasswordHash).
		Scan(&createdUser.UUID, &createdUser.Login, &createdUser.CreatedAt)

	if err != nil {
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	query := `
	SELECT uuid, login, password_hash, total_size, documents,
	       profile_picture_path, profile_picture_url, master_pin, created_at
	FROM users WHERE uuid = $1
	`
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, uuid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("[UserRepo] пользователь не найден: %w", util.ErrNotFound)
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// FindByLogin : ищет пользователя по login
func (r *UserRepository) FindByLogin(ctx context.Context, exec sqlx.ExtContext, login string) (*model.User, error) {
	query := `
	SELECT uuid, login, password_hash, total_size, documents,
	       profile_picture_path, profile_picture_url, master_pin, created_at
	FROM users WHERE login = $1
	`
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, login)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("[UserRepo] пользователь не найден: %w", util.ErrNotFound)
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по login", err)
	}
	return &user, nil
}

// UpdatePassword : меняет хэш пароля
func (r *UserRepository) UpdatePassword(ctx context.Context, exec sqlx.ExtContext, uuid, newPasswordHash string) error {
	result, err := exec.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE uuid = $1`, uuid, newPasswordHash)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пароль", err)
	}
	return requireAffected(result)
}

// DeleteUser : удаляет пользователя вместе с документами и токенами (каскад в БД)
func (r *UserRepository) DeleteUser(ctx context.Context, exec sqlx.ExtContext, uuid string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM users WHERE uuid = $1`, uuid)
	if err != nil {
		return util.LogError("[UserRepo] не удалось удалить пользователя", err)
	}
	return requireAffected(result)
}

// ListUsers : список пользователей, cursor по created_at
func (r *UserRepository) ListUsers(ctx context.Context, exec sqlx.ExtContext, cursor string, limit int) ([]*model.User, string, error) {
	query := `
	SELECT uuid, login, total_size, documents, profile_picture_url, created_at
	FROM users
	WHERE ($1 = '' OR created_at > $1::timestamptz)
	ORDER BY created_at ASC
	LIMIT $2
	`

	rows, err := exec.QueryxContext(ctx, query, cursor, limit)
	if err != nil {
		return nil, "", util.LogError("[UserRepo] не удалось получить список пользователей", err)
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		var user model.User
		if err := rows.StructScan(&user); err != nil {
			return nil, "", util.LogError("[UserRepo] ошибка чтения строки", err)
		}
		users = append(users, &user)
	}

	var nextCursor string
	if len(users) == limit {
		nextCursor = users[len(users)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	return users, nextCursor, nil
}

// Exists : проверяет наличие пользователя
func (r *UserRepository) Exists(ctx context.Context, exec sqlx.ExtContext, uuid string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, exec, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE uuid = $1)`, uuid)
	if err != nil {
		return false, util.LogError("[UserRepo] ошибка проверки пользователя", err)
	}
	return exists, nil
}

// AppendDocument : дописывает дескриптор в JSONB массив и инкрементирует
// total_size одним UPDATE. Оба изменения атомарны на уровне строки, поэтому
// параллельные загрузки одного пользователя не теряют обновления счётчика.
func (r *UserRepository) AppendDocument(ctx context.Context, exec sqlx.ExtContext, userUUID string, descriptor model.DocumentDescriptor, deltaBytes int64) error {
	descriptorJSON, err := descriptor.MarshalJSON()
	if err != nil {
		return util.LogError("[UserRepo] ошибка сериализации дескриптора", err)
	}

	query := `
	UPDATE users
	SET documents = documents || $2::jsonb,
	    total_size = total_size + $3
	WHERE uuid = $1
	`
	result, err := exec.ExecContext(ctx, query, userUUID, string(descriptorJSON), deltaBytes)
	if err != nil {
		return util.LogError("[UserRepo] не удалось дописать дескриптор", err)
	}
	return requireAffected(result)
}

// ReplaceDocuments : перезаписывает весь список дескрипторов и сдвигает
// total_size на deltaBytes. GREATEST не даёт счётчику уйти в минус, даже
// если учёт уже разъехался.
func (r *UserRepository) ReplaceDocuments(ctx context.Context, exec sqlx.ExtContext, userUUID string, documents model.DescriptorList, deltaBytes int64) error {
	value, err := documents.Value()
	if err != nil {
		return util.LogError("[UserRepo] ошибка сериализации списка дескрипторов", err)
	}

	query := `
	UPDATE users
	SET documents = $2::jsonb,
	    total_size = GREATEST(total_size + $3, 0)
	WHERE uuid = $1
	`
	result, err := exec.ExecContext(ctx, query, userUUID, value, deltaBytes)
	if err != nil {
		return util.LogError("[UserRepo] не удалось перезаписать список дескрипторов", err)
	}
	return requireAffected(result)
}

// SetProfilePicture : обновляет путь и ссылку аватара и сдвигает total_size
// на знаковую дельту (newSize - oldSize, посчитана сервисом до загрузки)
func (r *UserRepository) SetProfilePicture(ctx context.Context, exec sqlx.ExtContext, userUUID string, path, url string, deltaBytes int64) error {
	query := `
	UPDATE users
	SET profile_picture_path = $2,
	    profile_picture_url = $3,
	    total_size = GREATEST(total_size + $4, 0)
	WHERE uuid = $1
	`
	result, err := exec.ExecContext(ctx, query, userUUID, path, url, deltaBytes)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить аватар", err)
	}
	return requireAffected(result)
}

// SetMasterPin : задаёт или сбрасывает PIN (nil — сброс, PIN-доступ запрещён)
func (r *UserRepository) SetMasterPin(ctx context.Context, exec sqlx.ExtContext, userUUID string, pin *string) error {
	result, err := exec.ExecContext(ctx, `UPDATE users SET master_pin = $2 WHERE uuid = $1`, userUUID, pin)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить PIN", err)
	}
	return requireAffected(result)
}

// SetTotalSize : прямое выставление счётчика, используется только reconcile-воркером
func (r *UserRepository) SetTotalSize(ctx context.Context, exec sqlx.ExtContext, userUUID string, totalSize int64) error {
	result, err := exec.ExecContext(ctx, `UPDATE users SET total_size = $2 WHERE uuid = $1`, userUUID, totalSize)
	if err != nil {
		return util.LogError("[UserRepo] не удалось выставить total_size", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[UserRepo] не удалось проверить результат запроса", err)
	}
	if affected == 0 {
		return fmt.Errorf("[UserRepo] пользователь не найден: %w", util.ErrNotFound)
	}
	return nil
}
