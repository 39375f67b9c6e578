package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"docvault-web-server/config"
	"docvault-web-server/internal/docindex"
	"docvault-web-server/internal/ports"
	"docvault-web-server/internal/queue"
)

// Reconciler : фоновая чинилка учёта. Исходная система мирилась с дрейфом
// total_size и осиротевшими дескрипторами после частичных сбоев; здесь
// дрейф закрывается периодическим пересчётом по авторитетным данным.
type Reconciler struct {
	db               *config.Database
	userRepository   ports.UserRepository
	docRepository    ports.DocumentRepository
	storageInterface ports.S3Storage
}

func NewReconciler(
	db *config.Database,
	userRepository ports.UserRepository,
	docRepository ports.DocumentRepository,
	storageInterface ports.S3Storage,
) *Reconciler {
	return &Reconciler{
		db:               db,
		userRepository:   userRepository,
		docRepository:    docRepository,
		storageInterface: storageInterface,
	}
}

// Handler : регистрирует обработчик задачи пересчёта
func (r *Reconciler) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskReconcileQuota, r.handleReconcile)
	return mux
}

func (r *Reconciler) handleReconcile(ctx context.Context, task *asynq.Task) error {
	var payload queue.ReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("ошибка разбора задачи: %w", err)
	}

	if payload.UserUUID != "" {
		return r.reconcileUser(ctx, payload.UserUUID)
	}

	// полный проход по всем пользователям
	cursor := ""
	for {
		users, nextCursor, err := r.userRepository.ListUsers(ctx, r.db, cursor, 100)
		if err != nil {
			return fmt.Errorf("не удалось получить список пользователей: %w", err)
		}

		for _, user := range users {
			if err := r.reconcileUser(ctx, user.UUID); err != nil {
				log.Printf("[Reconciler] ошибка пересчёта пользователя %s: %v", user.UUID, err)
			}
		}

		if nextCursor == "" {
			return nil
		}
		cursor = nextCursor
	}
}

// reconcileUser : пересчитывает total_size по таблице documents и текущему
// аватару, выкидывает дескрипторы без авторитетной записи
func (r *Reconciler) reconcileUser(ctx context.Context, userUUID string) error {
	user, err := r.userRepository.FindByUUID(ctx, r.db, userUUID)
	if err != nil {
		return err
	}

	authoritative, err := r.docRepository.SumSizeByOwner(ctx, r.db, userUUID)
	if err != nil {
		return err
	}

	if user.ProfilePicturePath != nil && *user.ProfilePicturePath != "" {
		pictureSize, err := r.storageInterface.StatObject(ctx, *user.ProfilePicturePath)
		if err != nil {
			log.Printf("[Reconciler] аватар %s недоступен в хранилище: %v", *user.ProfilePicturePath, err)
		} else {
			authoritative += pictureSize
		}
	}

	records, err := r.docRepository.ListByOwner(ctx, r.db, userUUID)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(records))
	for _, record := range records {
		known[record.UUID] = true

		// заодно добиваем кэшированную ссылку, если её нет
		if record.DownloadURL == nil {
			access, err := r.storageInterface.IssueReadURL(ctx, record.StoragePath)
			if err != nil {
				log.Printf("[Reconciler] не удалось выписать ссылку для %s: %v", record.UUID, err)
				continue
			}
			if err := r.docRepository.UpdateDownloadURL(ctx, r.db, record.UUID, access.URL); err != nil {
				log.Printf("[Reconciler] не удалось обновить download_url для %s: %v", record.UUID, err)
			}
		}
	}

	pruned := user.Documents
	for _, descriptor := range user.Documents {
		if !known[descriptor.DocID] {
			log.Printf("[Reconciler] дескриптор %s без авторитетной записи, удаляем", descriptor.DocID)
			pruned = docindex.Remove(pruned, descriptor.DocID)
		}
	}

	if authoritative == user.TotalSize && len(pruned) == len(user.Documents) {
		return nil
	}

	log.Printf("[Reconciler] пользователь %s: total_size %d -> %d, дескрипторов %d -> %d",
		userUUID, user.TotalSize, authoritative, len(user.Documents), len(pruned))

	if len(pruned) != len(user.Documents) {
		if err := r.userRepository.ReplaceDocuments(ctx, r.db, userUUID, pruned, 0); err != nil {
			return err
		}
	}

	return r.userRepository.SetTotalSize(ctx, r.db, userUUID, authoritative)
}
