package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docvault-web-server/config"
	"docvault-web-server/internal/model/requestresponse"
	"docvault-web-server/internal/ports"
	"docvault-web-server/internal/quota"
	"docvault-web-server/internal/security"
	"docvault-web-server/internal/util"
)

type UserHandler struct {
	ports.UserService
	quotaCfg *config.QuotaConfig
}

func NewUserHandler(userService ports.UserService, quotaCfg *config.QuotaConfig) *UserHandler {
	return &UserHandler{userService, quotaCfg}
}

// RegisterUser godoc
// @Summary Регистрация нового пользователя
// @Description Требует фиксированный админский токен. Логин не короче 8 символов,
// только латиница и цифры. Пароль с верхним и нижним регистром и цифрой.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 201 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Логин или пароль не прошли валидацию"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный админский токен"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/register [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if _, err := h.UserService.Register(ctx, req.Token, req.Login, req.Password, r.RemoteAddr); err != nil {
		respondServiceError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusCreated, requestresponse.RegisterData{Login: req.Login})
}

// GetUser godoc
// @Summary Данные пользователя
// @Description Возвращает профиль вместе с текущим потреблением квоты в мегабайтах
// @Tags Users
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/users/{uuid} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userUUID, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(ctx, userUUID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	data := requestresponse.UserData{
		UUID:      user.UUID,
		Login:     user.Login,
		TotalSize: user.TotalSize,
		UsedMB:    quota.ToMB(user.TotalSize),
		MaxMB:     quota.ToMB(h.quotaCfg.MaxUserBytes),
	}
	if user.ProfilePictureURL != nil {
		data.ProfilePictureURL = *user.ProfilePictureURL
	}

	util.WriteSuccess(w, http.StatusOK, data)
}

// UpdatePassword godoc
// @Summary Смена пароля
// @Description Меняет пароль и отзывает все refresh-токены пользователя
// @Tags Users
// @Accept json
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param body body requestresponse.UpdatePasswordRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/users/{uuid}/password [put]
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userUUID, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.UserService.UpdatePassword(ctx, userUUID, req.NewPassword); err != nil {
		respondServiceError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, map[string]string{"uuid": userUUID})
}

// DeleteUser godoc
// @Summary Удаление пользователя
// @Tags Users
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/users/{uuid} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userUUID, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}

	if err := h.UserService.DeleteUser(ctx, userUUID); err != nil {
		respondServiceError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, map[string]bool{userUUID: true})
}

// ListUsers godoc
// @Summary Список пользователей
// @Description Только с админским токеном. Курсорная пагинация по created_at.
// @Tags Users
// @Produce json
// @Param token query string true "Админский токен"
// @Param cursor query string false "Курсор пагинации"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	users, nextCursor, err := h.UserService.ListUsers(ctx, r.URL.Query().Get("token"), r.URL.Query().Get("cursor"), 50)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, requestresponse.ListUsersData{
		Users:      users,
		NextCursor: nextCursor,
	})
}

// ReplaceProfilePicture godoc
// @Summary Замена аватара
// @Description Принимает файл в multipart-поле picture, не больше 2 MiB.
// Квота проверяется по разнице размеров нового и старого аватара,
// старый объект удаляется после обновления записи.
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param picture formData file true "Файл изображения"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 413 {object} requestresponse.ErrorResponse "Превышена квота хранилища"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/users/{uuid}/profile-picture [put]
func (h *UserHandler) ReplaceProfilePicture(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userUUID, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(2 << 20); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		util.HandleError(w, "файл не найден в запросе", http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		util.HandleError(w, "ошибка чтения файла", http.StatusInternalServerError)
		return
	}

	access, err := h.UserService.ReplaceProfilePicture(ctx, userUUID, ports.ProfilePictureInput{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     fileBytes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, requestresponse.ProfilePictureData{Access: access})
}

// SetMasterPin godoc
// @Summary Установка PIN для публичного доступа
// @Description PIN от 4 до 8 цифр. Пустой PIN отключает публичный доступ.
// @Tags Users
// @Accept json
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param body body requestresponse.SetPinRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/users/{uuid}/pin [put]
func (h *UserHandler) SetMasterPin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userUUID, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}

	var req requestresponse.SetPinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.UserService.SetMasterPin(ctx, userUUID, req.Pin); err != nil {
		respondServiceError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, map[string]bool{"pin_set": req.Pin != ""})
}

// authorizeOwner : достаёт uuid из пути и пускает только владельца или админа
func (h *UserHandler) authorizeOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	userUUID := chi.URLParam(r, "uuid")
	if userUUID == "" {
		util.HandleError(w, "UUID пользователя обязателен", http.StatusBadRequest)
		return "", false
	}

	claims, ok := r.Context().Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return "", false
	}

	if claims.UserUUID != userUUID && !claims.IsAdmin {
		util.HandleError(w, "доступ запрещён", http.StatusForbidden)
		return "", false
	}

	return userUUID, true
}
