package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docvault-web-server/internal/model/requestresponse"
	"docvault-web-server/internal/ports"
	"docvault-web-server/internal/security"
	"docvault-web-server/internal/util"
)

// разрешённые MIME-типы документов; всё остальное отклоняется на границе
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"image/jpeg":         true,
	"image/png":          true,
	"text/plain":         true,
	"application/zip":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

type DocumentHandler struct {
	ports.DocumentService
}

func NewDocumentHandler(documentService ports.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService}
}

// UploadDocument godoc
// @Summary Загрузка нового документа
// @Description Принимает файл в multipart-поле document, не больше 10 MiB и только разрешённых MIME-типов.
// Проверяет квоту пользователя до записи в хранилище.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param document formData file true "Файл документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.SuccessResponse "Дескриптор загруженного документа"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса или недопустимый файл"
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 413 {object} requestresponse.ErrorResponse "Превышена квота хранилища"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/docs [post]
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	claims, ok := ctx.Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		util.HandleError(w, "файл не найден в запросе", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > 10<<20 {
		util.HandleError(w, "файл больше 10 MiB", http.StatusBadRequest)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[mimeType] {
		util.HandleError(w, "недопустимый тип файла", http.StatusBadRequest)
		return
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		util.HandleError(w, "ошибка чтения файла", http.StatusInternalServerError)
		return
	}

	descriptor, err := h.DocumentService.UploadDocument(ctx, ports.UploadInput{
		OwnerUUID: claims.UserUUID,
		Filename:  header.Filename,
		MimeType:  mimeType,
		Data:      fileBytes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusCreated, requestresponse.UploadDocumentData{
		Descriptor: *descriptor,
	})
}

// MyDocuments godoc
// @Summary Список документов пользователя
// @Description Возвращает дескрипторы документов со свежими подписанными ссылками.
// Ссылки не кэшируются и выписываются заново на каждый запрос.
// @Tags Documents
// @Accept json
// @Produce json
// @Param body body requestresponse.MyDocumentsRequest false "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/my-documents [post]
func (h *DocumentHandler) MyDocuments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := ctx.Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.MyDocumentsRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			return
		}
	}

	userUUID := claims.UserUUID
	if req.UserID != "" && req.UserID != claims.UserUUID {
		if !claims.IsAdmin {
			util.HandleError(w, "доступ запрещён", http.StatusForbidden)
			return
		}
		userUUID = req.UserID
	}

	listings, err := h.DocumentService.MyDocuments(ctx, userUUID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, requestresponse.MyDocumentsData{
		Documents: toListingItems(listings),
	})
}

// DeleteDocument godoc
// @Summary Удаление документа
// @Description Удаляет объект из хранилища (best-effort), авторитетную запись и дескриптор.
// Квота уменьшается на размер из записи документа.
// @Tags Documents
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Не владелец документа"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id} [delete]
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	docUUID := chi.URLParam(r, "doc_id")
	if docUUID == "" {
		util.HandleError(w, "ID документа обязателен", http.StatusBadRequest)
		return
	}

	claims, ok := ctx.Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	if err := h.DocumentService.DeleteDocument(ctx, docUUID, claims.UserUUID); err != nil {
		respondServiceError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, map[string]bool{docUUID: true})
}

// ToggleVisibility godoc
// @Summary Изменение видимости документа
// @Description Выставляет флаг isDocShow у дескриптора. Запись устаревшей формы
// при этом переводится в текущую.
// @Tags Documents
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param body body requestresponse.ToggleVisibilityRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Дескриптор не найден"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/toggle-visibility [put]
func (h *DocumentHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	docUUID := chi.URLParam(r, "doc_id")
	if docUUID == "" {
		util.HandleError(w, "ID документа обязателен", http.StatusBadRequest)
		return
	}

	claims, ok := ctx.Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.ToggleVisibilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.IsDocShow == nil {
		util.HandleError(w, "isDocShow обязателен", http.StatusBadRequest)
		return
	}

	documents, err := h.DocumentService.ToggleVisibility(ctx, docUUID, claims.UserUUID, *req.IsDocShow)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, requestresponse.ToggleVisibilityData{
		Documents: documents,
	})
}

// GetDocumentsByPin godoc
// @Summary Документы пользователя по PIN
// @Description Неавторизованное чтение видимых документов по общему PIN.
// Если PIN у пользователя не задан, доступ запрещён.
// @Tags Public Documents
// @Accept json
// @Produce json
// @Param body body requestresponse.PinAccessRequest true "Тело запроса"
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "PIN не задан или не совпал"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /public/docs/by-pin [post]
func (h *DocumentHandler) GetDocumentsByPin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req requestresponse.PinAccessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.UserID == "" || req.Pin == "" {
		util.HandleError(w, "userId и pin обязательны", http.StatusBadRequest)
		return
	}

	listings, err := h.DocumentService.GetDocumentsByPin(ctx, req.UserID, req.Pin)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, requestresponse.MyDocumentsData{
		Documents: toListingItems(listings),
	})
}

func toListingItems(listings []ports.DocumentListing) []requestresponse.DocumentListingItem {
	items := make([]requestresponse.DocumentListingItem, 0, len(listings))
	for _, listing := range listings {
		items = append(items, requestresponse.DocumentListingItem{
			Descriptor: listing.Descriptor,
			Access:     listing.Access,
		})
	}
	return items
}
