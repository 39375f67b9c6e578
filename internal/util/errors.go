package util

import (
	"errors"
	"fmt"
)

// Таксономия ошибок сервисного слоя; хендлеры сопоставляют их HTTP статусам:
// 401 / 403 / 404 / 400 / 413, всё остальное — 500 без деталей
var (
	ErrUnauthenticated = errors.New("пользователь не авторизован")
	ErrForbidden       = errors.New("доступ запрещён")
	ErrNotFound        = errors.New("не найдено")
	ErrValidation      = errors.New("некорректный запрос")
)

// QuotaExceededError : отказ по квоте с деталями для клиента
type QuotaExceededError struct {
	UsedBytes      int64
	MaxBytes       int64
	FileBytes      int64
	AvailableBytes int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("превышена квота хранилища: занято %d из %d байт, файл %d байт",
		e.UsedBytes, e.MaxBytes, e.FileBytes)
}
