package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"docvault-web-server/config"
	"docvault-web-server/internal/model"
	"docvault-web-server/internal/util"
)

type DocumentRepository struct {
	*config.Database
}

func NewDocumentRepository(database *config.Database) *DocumentRepository {
	return &DocumentRepository{database}
}

// Create : сохраняем новую авторитетную запись о документе
func (r *DocumentRepository) Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error {
	query := `
		INSERT INTO documents (uuid, owner_uuid, filename_original, size_bytes, mime_type, storage_path, download_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		document.UUID,
		document.OwnerUUID,
		document.FilenameOriginal,
		document.SizeBytes,
		document.MimeType,
		document.StoragePath,
		document.DownloadURL)

	if err != nil {
		return util.LogError("[DocumentRepo] ошибка вставки документа", err)
	}
	return nil
}

// GetByUUID : возвращает запись без проверки владения — владение проверяет сервис
func (r *DocumentRepository) GetByUUID(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (*model.Document, error) {
	query := `
		SELECT uuid, owner_uuid, filename_original, size_bytes, mime_type,
		       storage_path, download_url, created_at, updated_at
		FROM documents
		WHERE uuid = $1
	`

	var document model.Document
	err := sqlx.GetContext(ctx, exec, &document, query, documentUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("[DocumentRepo] документ не найден: %w", util.ErrNotFound)
	}
	if err != nil {
		return nil, util.LogError("[DocumentRepo] не удалось получить документ", err)
	}

	return &document, nil
}

// ListByOwner : все документы владельца, свежие первыми
func (r *DocumentRepository) ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string) ([]model.Document, error) {
	query := `
		SELECT uuid, owner_uuid, filename_original, size_bytes, mime_type,
		       storage_path, download_url, created_at, updated_at
		FROM documents
		WHERE owner_uuid = $1
		ORDER BY created_at DESC
	`

	docs := []model.Document{}
	rows, err := exec.QueryxContext(ctx, query, ownerUUID)
	if err != nil {
		return nil, util.LogError("[DocumentRepo] не удалось получить список документов", err)
	}
	defer rows.Close()

	for rows.Next() {
		var document model.Document
		if err := rows.StructScan(&document); err != nil {
			return nil, util.LogError("[DocumentRepo] ошибка чтения строки", err)
		}
		docs = append(docs, document)
	}

	return docs, nil
}

// Delete : физическое удаление записи; запись удаляется всегда, даже если
// объект в S3 удалить не получилось
func (r *DocumentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, documentUUID string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM documents WHERE uuid = $1`, documentUUID)
	if err != nil {
		return util.LogError("[DocumentRepo] ошибка удаления документа", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[DocumentRepo] не удалось проверить удаление", err)
	}
	if affected == 0 {
		return fmt.Errorf("[DocumentRepo] документ не найден: %w", util.ErrNotFound)
	}
	return nil
}

// UpdateDownloadURL : обновляет кэшированную ссылку; единственное поле,
// которое меняется после создания записи
func (r *DocumentRepository) UpdateDownloadURL(ctx context.Context, exec sqlx.ExtContext, documentUUID string, downloadURL string) error {
	_, err := exec.ExecContext(ctx,
		`UPDATE documents SET download_url = $2, updated_at = NOW() WHERE uuid = $1`,
		documentUUID, downloadURL)
	if err != nil {
		return util.LogError("[DocumentRepo] не удалось обновить download_url", err)
	}
	return nil
}

// SumSizeByOwner : авторитетная сумма размеров, используется reconcile-воркером
func (r *DocumentRepository) SumSizeByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string) (int64, error) {
	var total int64
	err := sqlx.GetContext(ctx, exec, &total,
		`SELECT COALESCE(SUM(size_bytes), 0) FROM documents WHERE owner_uuid = $1`, ownerUUID)
	if err != nil {
		return 0, util.LogError("[DocumentRepo] не удалось посчитать сумму размеров", err)
	}
	return total, nil
}
