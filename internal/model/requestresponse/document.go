package requestresponse

import (
	"docvault-web-server/internal/model"
)

// UploadDocumentData : данные успешной загрузки
type UploadDocumentData struct {
	Descriptor model.DocumentDescriptor `json:"descriptor"`
}

// DocumentListingItem : дескриптор со свежей подписанной ссылкой
type DocumentListingItem struct {
	Descriptor model.DocumentDescriptor `json:"descriptor"`
	Access     *model.SignedAccess      `json:"access,omitempty"`
}

// MyDocumentsRequest : тело запроса списка своих документов
type MyDocumentsRequest struct {
	UserID string `json:"userId" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
}

// MyDocumentsData : данные ответа со списком документов
type MyDocumentsData struct {
	Documents []DocumentListingItem `json:"documents"`
}

// ToggleVisibilityRequest : тело запроса изменения видимости
type ToggleVisibilityRequest struct {
	IsDocShow *bool `json:"isDocShow" example:"true"`
}

// ToggleVisibilityData : обновлённый список дескрипторов
type ToggleVisibilityData struct {
	Documents model.DescriptorList `json:"documents"`
}

// PinAccessRequest : тело неавторизованного запроса по PIN
type PinAccessRequest struct {
	UserID string `json:"userId" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Pin    string `json:"pin" example:"4821"`
}

// QuotaData : тело ответа 413 при превышении квоты
type QuotaData struct {
	UsedMB      float64 `json:"usedMB" example:"46.73"`
	MaxMB       float64 `json:"maxMB" example:"50"`
	FileMB      float64 `json:"fileMB" example:"4"`
	AvailableMB float64 `json:"availableMB" example:"3.27"`
}

// SuccessResponse : единый конверт успешного ответа
type SuccessResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse : единый конверт ошибки
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"описание ошибки"`
}
