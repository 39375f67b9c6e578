package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docvault-web-server/config"
	"docvault-web-server/internal/docindex"
	"docvault-web-server/internal/model"
	"docvault-web-server/internal/ports"
	"docvault-web-server/internal/quota"
	"docvault-web-server/internal/util"
)

type DocumentService struct {
	documentRepository ports.DocumentRepository
	cacheRepository    ports.CacheRepository
	storageInterface   ports.S3Storage
	userRepository     ports.UserRepository
	reconcileQueue     ports.ReconcileEnqueuer
	quotaCfg           *config.QuotaConfig
}

func NewDocumentService(
	documentRepository ports.DocumentRepository,
	cacheRepository ports.CacheRepository,
	storageInterface ports.S3Storage,
	userRepository ports.UserRepository,
	reconcileQueue ports.ReconcileEnqueuer,
	quotaCfg *config.QuotaConfig,
) *DocumentService {
	return &DocumentService{
		documentRepository: documentRepository,
		cacheRepository:    cacheRepository,
		storageInterface:   storageInterface,
		userRepository:     userRepository,
		reconcileQueue:     reconcileQueue,
		quotaCfg:           quotaCfg,
	}
}

// UploadDocument : сага загрузки — проверка квоты, запись объекта в S3,
// авторитетная запись в documents, атомарное дописывание дескриптора и
// инкремент total_size. Распределённой транзакции нет: сбой после записи
// объекта оставляет его осиротевшим, это логируется и отдаётся
// reconcile-воркеру, автоматических ретраев нет.
func (s *DocumentService) UploadDocument(ctx context.Context, input ports.UploadInput) (*model.DocumentDescriptor, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, fmt.Errorf("[DocumentService] database connection не найден в context")
	}

	size := int64(len(input.Data))
	if size == 0 {
		return nil, fmt.Errorf("[DocumentService] пустой файл: %w", util.ErrValidation)
	}
	if size > s.quotaCfg.MaxDocumentBytes {
		return nil, fmt.Errorf("[DocumentService] файл больше %d байт: %w", s.quotaCfg.MaxDocumentBytes, util.ErrValidation)
	}

	user, err := s.userRepository.FindByUUID(ctx, db, input.OwnerUUID)
	if err != nil {
		return nil, util.LogError("[DocumentService] не удалось получить пользователя", err)
	}

	// квота проверяется до любого обращения к хранилищу
	decision := quota.CheckAndReserve(user.TotalSize, size, s.quotaCfg.MaxUserBytes)
	if !decision.Accepted {
		return nil, &util.QuotaExceededError{
			UsedBytes:      user.TotalSize,
			MaxBytes:       s.quotaCfg.MaxUserBytes,
			FileBytes:      size,
			AvailableBytes: decision.AvailableBytes,
		}
	}

	fileExt := filepath.Ext(input.Filename)
	fileName := strings.TrimSuffix(input.Filename, fileExt)
	documentUUID := uuid.New().String()
	storagePath := fmt.Sprintf("users/%s/documents/%s-%s%s",
		input.OwnerUUID,
		url.PathEscape(fileName),
		documentUUID[:8],
		fileExt,
	)

	if err := s.storageInterface.UploadObject(ctx, storagePath, input.Data, input.MimeType); err != nil {
		return nil, util.LogError("[DocumentService] не удалось записать объект в S3", err)
	}

	access, err := s.storageInterface.IssueReadURL(ctx, storagePath)
	if err != nil {
		// ссылка кэшируемая, без неё можно жить — на чтении выпишется свежая
		log.Printf("[DocumentService] не удалось выписать ссылку при загрузке: %v", err)
	}

	document := &model.Document{
		UUID:             documentUUID,
		OwnerUUID:        input.OwnerUUID,
		FilenameOriginal: input.Filename,
		SizeBytes:        size,
		MimeType:         input.MimeType,
		StoragePath:      storagePath,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if access != nil {
		document.DownloadURL = &access.URL
	}

	if err := s.documentRepository.Create(ctx, db, document); err != nil {
		s.reportOrphan(ctx, input.OwnerUUID, storagePath, err)
		return nil, util.LogError("[DocumentService] не удалось сохранить документ в БД", err)
	}

	descriptor := model.DocumentDescriptor{
		DocID:        documentUUID,
		DocName:      input.Filename,
		DocType:      input.MimeType,
		DocSize:      size,
		UploadedTime: time.Now().UnixMilli(),
		IsDocShow:    true,
	}

	if err := s.userRepository.AppendDocument(ctx, db, input.OwnerUUID, descriptor, size); err != nil {
		s.reportOrphan(ctx, input.OwnerUUID, storagePath, err)
		return nil, util.LogError("[DocumentService] не удалось обновить запись пользователя", err)
	}

	if err := s.cacheRepository.InvalidateUserDocuments(ctx, input.OwnerUUID); err != nil {
		log.Printf("[DocumentService] ошибка сброса кэша: %v", err)
	}

	log.Printf("[DocumentService] документ %s успешно загружен (%d байт)", input.Filename, size)

	return &descriptor, nil
}

// DeleteDocument : удаляет объект (best-effort), авторитетную запись и
// дескриптор. Сбой удаления объекта не прерывает остальное — запись в БД
// удаляется всегда, total_size уменьшается на размер из записи, а не из
// свежего stat хранилища.
func (s *DocumentService) DeleteDocument(ctx context.Context, documentUUID string, callerUUID string) error {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return fmt.Errorf("[DocumentService] database connection не найден в context")
	}

	document, err := s.documentRepository.GetByUUID(ctx, db, documentUUID)
	if err != nil {
		return err
	}

	if document.OwnerUUID != callerUUID {
		return fmt.Errorf("[DocumentService] только владелец может удалить документ: %w", util.ErrForbidden)
	}

	if err := s.storageInterface.DeleteObject(ctx, document.StoragePath); err != nil {
		// объект мог быть уже удалён или перемещён — это не повод
		// оставлять запись и дескриптор
		log.Printf("[DocumentService] ошибка удаления объекта %s из S3: %v", document.StoragePath, err)
	}

	if err := s.documentRepository.Delete(ctx, db, documentUUID); err != nil {
		return util.LogError("[DocumentService] ошибка удаления документа из БД", err)
	}

	user, err := s.userRepository.FindByUUID(ctx, db, callerUUID)
	if err != nil {
		return util.LogError("[DocumentService] не удалось получить пользователя", err)
	}

	remaining := docindex.Remove(user.Documents, documentUUID)
	if err := s.userRepository.ReplaceDocuments(ctx, db, callerUUID, remaining, -document.SizeBytes); err != nil {
		s.reportDrift(ctx, callerUUID, err)
		return util.LogError("[DocumentService] не удалось обновить запись пользователя", err)
	}

	if err := s.cacheRepository.InvalidateUserDocuments(ctx, callerUUID); err != nil {
		log.Printf("[DocumentService] ошибка сброса кэша: %v", err)
	}

	log.Printf("[DocumentService] документ %s успешно удален", document.FilenameOriginal)

	return nil
}

// MyDocuments : список дескрипторов пользователя со свежими подписанными
// ссылками. Сами дескрипторы берутся из кэша, ссылки — никогда: на каждое
// чтение выписывается новая.
func (s *DocumentService) MyDocuments(ctx context.Context, userUUID string) ([]ports.DocumentListing, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, fmt.Errorf("[DocumentService] database connection не найден в context")
	}

	documents, err := s.cacheRepository.GetUserDocuments(ctx, userUUID)
	if err != nil {
		log.Printf("[DocumentService] ошибка кэширования: %v", err)
	}

	if documents == nil {
		user, err := s.userRepository.FindByUUID(ctx, db, userUUID)
		if err != nil {
			return nil, err
		}
		documents = user.Documents

		if err := s.cacheRepository.SetUserDocuments(ctx, userUUID, documents); err != nil {
			log.Printf("[DocumentService] ошибка кэширования списка: %v", err)
		}
	}

	return s.buildListings(ctx, db, userUUID, documents)
}

// ToggleVisibility : выставляет флаг видимости дескриптора; запись старой
// формы при этом переводится в текущую. Список перезаписывается целиком.
func (s *DocumentService) ToggleVisibility(ctx context.Context, documentUUID string, callerUUID string, visible bool) (model.DescriptorList, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, fmt.Errorf("[DocumentService] database connection не найден в context")
	}

	user, err := s.userRepository.FindByUUID(ctx, db, callerUUID)
	if err != nil {
		return nil, err
	}

	updated, err := docindex.SetVisibility(user.Documents, documentUUID, visible)
	if errors.Is(err, docindex.ErrDescriptorNotFound) {
		return nil, fmt.Errorf("[DocumentService] документ не найден: %w", util.ErrNotFound)
	}
	if err != nil {
		return nil, util.LogError("[DocumentService] не удалось изменить видимость", err)
	}

	if err := s.userRepository.ReplaceDocuments(ctx, db, callerUUID, updated, 0); err != nil {
		return nil, util.LogError("[DocumentService] не удалось сохранить список дескрипторов", err)
	}

	if err := s.cacheRepository.InvalidateUserDocuments(ctx, callerUUID); err != nil {
		log.Printf("[DocumentService] ошибка сброса кэша: %v", err)
	}

	return updated, nil
}

// GetDocumentsByPin : неавторизованное чтение по общему PIN. Если PIN у
// пользователя не задан — доступ запрещён. Отдаются только видимые записи.
func (s *DocumentService) GetDocumentsByPin(ctx context.Context, userUUID string, pin string) ([]ports.DocumentListing, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, fmt.Errorf("[DocumentService] database connection не найден в context")
	}

	if pin == "" {
		return nil, fmt.Errorf("[DocumentService] PIN обязателен: %w", util.ErrValidation)
	}

	user, err := s.userRepository.FindByUUID(ctx, db, userUUID)
	if err != nil {
		return nil, err
	}

	if user.MasterPin == nil || *user.MasterPin == "" {
		return nil, fmt.Errorf("[DocumentService] PIN-доступ не настроен: %w", util.ErrForbidden)
	}
	if *user.MasterPin != pin {
		return nil, fmt.Errorf("[DocumentService] неверный PIN: %w", util.ErrForbidden)
	}

	return s.buildListings(ctx, db, userUUID, docindex.VisibleOnly(user.Documents))
}

func (s *DocumentService) buildListings(ctx context.Context, db *config.Database, userUUID string, documents model.DescriptorList) ([]ports.DocumentListing, error) {
	records, err := s.documentRepository.ListByOwner(ctx, db, userUUID)
	if err != nil {
		return nil, util.LogError("[DocumentService] не удалось получить записи документов", err)
	}

	byUUID := make(map[string]*model.Document, len(records))
	for i := range records {
		byUUID[records[i].UUID] = &records[i]
	}

	listings := make([]ports.DocumentListing, 0, len(documents))
	for _, descriptor := range documents {
		listing := ports.DocumentListing{Descriptor: descriptor}

		if record, found := byUUID[descriptor.DocID]; found {
			access, err := s.storageInterface.IssueReadURL(ctx, record.StoragePath)
			if err != nil {
				log.Printf("[DocumentService] ошибка генерации ссылки для документа %s: %v", descriptor.DocID, err)
			} else {
				listing.Access = access
			}
		}

		listings = append(listings, listing)
	}

	return listings, nil
}

// reportOrphan : фиксирует осиротевший объект после частичного сбоя саги
// и ставит задачу пересчёта; сам запрос не ретраится
func (s *DocumentService) reportOrphan(ctx context.Context, userUUID string, storagePath string, cause error) {
	log.Printf("[DocumentService] осиротевший объект %s после сбоя: %v", storagePath, cause)
	if s.reconcileQueue == nil {
		return
	}
	if err := s.reconcileQueue.EnqueueReconcile(ctx, userUUID); err != nil {
		log.Printf("[DocumentService] не удалось поставить задачу пересчёта: %v", err)
	}
}

func (s *DocumentService) reportDrift(ctx context.Context, userUUID string, cause error) {
	log.Printf("[DocumentService] возможный дрейф total_size пользователя %s: %v", userUUID, cause)
	if s.reconcileQueue == nil {
		return
	}
	if err := s.reconcileQueue.EnqueueReconcile(ctx, userUUID); err != nil {
		log.Printf("[DocumentService] не удалось поставить задачу пересчёта: %v", err)
	}
}
