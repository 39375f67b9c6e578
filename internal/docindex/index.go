// Package docindex содержит операции над встроенным списком дескрипторов
// документов пользователя. Каждая операция возвращает полный новый список:
// JSONB колонка перезаписывается целиком, безопасного частичного обновления
// массива с разнородными элементами у хранилища нет.
package docindex

import (
	"errors"

	"docvault-web-server/internal/model"
)

var ErrDescriptorNotFound = errors.New("дескриптор документа не найден")

// Append : добавляет дескриптор в конец списка
func Append(list model.DescriptorList, descriptor model.DocumentDescriptor) model.DescriptorList {
	result := make(model.DescriptorList, 0, len(list)+1)
	result = append(result, list...)
	result = append(result, descriptor)
	return result
}

// Remove : убирает запись с совпадающим идентификатором, любой формы.
// Отсутствие записи не ошибка — операция идемпотентна.
func Remove(list model.DescriptorList, docID string) model.DescriptorList {
	result := make(model.DescriptorList, 0, len(list))
	for _, d := range list {
		if d.DocID == docID {
			continue
		}
		result = append(result, d)
	}
	return result
}

// SetVisibility : выставляет флаг isDocShow у записи с данным идентификатором.
// Запись старой формы при этом переводится в текущую, заполняются только
// docId и isDocShow — остальные поля неизвестны и остаются пустыми
// (сознательно неполный upgrade, воссоздавать их неоткуда без похода в БД).
func SetVisibility(list model.DescriptorList, docID string, visible bool) (model.DescriptorList, error) {
	result := make(model.DescriptorList, len(list))
	copy(result, list)

	for i := range result {
		if result[i].DocID != docID {
			continue
		}

		if result[i].Legacy {
			result[i] = model.DocumentDescriptor{
				DocID:     docID,
				IsDocShow: visible,
			}
		} else {
			result[i].IsDocShow = visible
		}
		return result, nil
	}

	return nil, ErrDescriptorNotFound
}

// VisibleOnly : возвращает только видимые записи текущей формы.
// Записи старой формы появились до флага видимости и видимыми не считаются.
func VisibleOnly(list model.DescriptorList) model.DescriptorList {
	result := make(model.DescriptorList, 0, len(list))
	for _, d := range list {
		if d.Legacy || !d.IsDocShow {
			continue
		}
		result = append(result, d)
	}
	return result
}
