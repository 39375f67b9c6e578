package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

var client = &http.Client{Timeout: 5 * time.Second}

// NotifyWebhook : уведомляет о попытке входа с нового IP адреса
func NotifyWebhook(webhookURL string, userUUID string, newIP string, knownIP string) error {
	if webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"user_uuid": userUUID,
		"new_ip":    newIP,
		"known_ip":  knownIP,
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации webhook: %w", err)
	}

	resp, err := client.Post(webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ошибка запроса webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook вернул статус %d", resp.StatusCode)
	}

	return nil
}
