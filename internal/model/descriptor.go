package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DocumentDescriptor : элемент встроенного списка документов пользователя.
// Это денормализованный кэш части полей таблицы documents, источник истины
// для размера и storage_path — сама таблица documents.
//
// В JSONB колонке users.documents встречаются две формы записи:
// устаревшая — голая строка с идентификатором документа, и текущая — объект.
// При чтении обе нормализуются в эту структуру, нетронутая устаревшая запись
// сериализуется обратно строкой и проходит через запись без изменений.
type DocumentDescriptor struct {
	DocID        string `json:"docId"`
	DocName      string `json:"docName,omitempty"`
	DocType      string `json:"docType,omitempty"`
	DocSize      int64  `json:"docSize,omitempty"`
	UploadedTime int64  `json:"uploadedTime,omitempty"`
	IsDocShow    bool   `json:"isDocShow"`

	// Legacy : запись старой формы; сбрасывается при upgrade (см. docindex.SetVisibility)
	Legacy bool `json:"-"`
}

func (d *DocumentDescriptor) UnmarshalJSON(data []byte) error {
	var docID string
	if err := json.Unmarshal(data, &docID); err == nil {
		*d = DocumentDescriptor{DocID: docID, Legacy: true}
		return nil
	}

	type descriptorAlias DocumentDescriptor
	var alias descriptorAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("неизвестная форма дескриптора документа: %w", err)
	}

	*d = DocumentDescriptor(alias)
	return nil
}

func (d DocumentDescriptor) MarshalJSON() ([]byte, error) {
	if d.Legacy {
		return json.Marshal(d.DocID)
	}

	type descriptorAlias DocumentDescriptor
	return json.Marshal(descriptorAlias(d))
}

// DescriptorList : встроенный список дескрипторов, хранится в JSONB
type DescriptorList []DocumentDescriptor

func (l DescriptorList) Value() (driver.Value, error) {
	if l == nil {
		l = DescriptorList{}
	}
	return json.Marshal(l)
}

func (l *DescriptorList) Scan(src interface{}) error {
	if src == nil {
		*l = DescriptorList{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("неожиданный тип JSONB колонки documents: %T", src)
	}

	return json.Unmarshal(data, l)
}
