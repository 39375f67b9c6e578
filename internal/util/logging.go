package util

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"docvault-web-server/internal/quota"
)

func LogError(message string, err error) error {
	log.Printf("%s: %v", message, err)
	return fmt.Errorf("%s: %w", message, err)
}

// Envelope : единый формат ответа API
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func WriteSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Envelope{
		Success: true,
		Data:    data,
	})
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Envelope{
		Success: false,
		Message: message,
	})
}

// QuotaPayload : тело ответа 413, значения в мегабайтах с двумя знаками
type QuotaPayload struct {
	UsedMB      float64 `json:"usedMB"`
	MaxMB       float64 `json:"maxMB"`
	FileMB      float64 `json:"fileMB"`
	AvailableMB float64 `json:"availableMB"`
}

func HandleQuotaError(w http.ResponseWriter, quotaErr *QuotaExceededError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusRequestEntityTooLarge)
	json.NewEncoder(w).Encode(Envelope{
		Success: false,
		Message: "превышена квота хранилища",
		Data: QuotaPayload{
			UsedMB:      quota.ToMB(quotaErr.UsedBytes),
			MaxMB:       quota.ToMB(quotaErr.MaxBytes),
			FileMB:      quota.ToMB(quotaErr.FileBytes),
			AvailableMB: quota.ToMB(quotaErr.AvailableBytes),
		},
	})
}
