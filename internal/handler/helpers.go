package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"docvault-web-server/internal/util"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return err
	}
	return nil
}

// respondServiceError : единое сопоставление ошибок сервисного слоя HTTP статусам
func respondServiceError(w http.ResponseWriter, err error) {
	log.Println(err)

	var quotaErr *util.QuotaExceededError
	switch {
	case errors.As(err, &quotaErr):
		util.HandleQuotaError(w, quotaErr)
	case errors.Is(err, util.ErrValidation):
		util.HandleError(w, "некорректный запрос", http.StatusBadRequest)
	case errors.Is(err, util.ErrUnauthenticated):
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
	case errors.Is(err, util.ErrForbidden):
		util.HandleError(w, "доступ запрещён", http.StatusForbidden)
	case errors.Is(err, util.ErrNotFound):
		util.HandleError(w, "не найдено", http.StatusNotFound)
	default:
		// детали внутренних ошибок наружу не отдаются
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}
