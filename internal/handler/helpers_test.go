package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault-web-server/internal/util"
)

func TestRespondServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation", err: fmt.Errorf("пустой файл: %w", util.ErrValidation), wantStatus: http.StatusBadRequest},
		{name: "unauthenticated", err: fmt.Errorf("неверный токен: %w", util.ErrUnauthenticated), wantStatus: http.StatusUnauthorized},
		{name: "forbidden", err: fmt.Errorf("неверный PIN: %w", util.ErrForbidden), wantStatus: http.StatusForbidden},
		{name: "not found", err: fmt.Errorf("документ не найден: %w", util.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "unknown", err: fmt.Errorf("что-то пошло не так"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondServiceError(recorder, tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var envelope util.Envelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.False(t, envelope.Success)
			assert.NotEmpty(t, envelope.Message)
		})
	}
}

func TestRespondServiceError_QuotaPayload(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondServiceError(recorder, &util.QuotaExceededError{
		UsedBytes:      49_000_000,
		MaxBytes:       52_428_800,
		FileBytes:      4 << 20,
		AvailableBytes: 3_428_800,
	})

	assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)

	var body struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Data    util.QuotaPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	assert.False(t, body.Success)
	assert.Equal(t, 46.73, body.Data.UsedMB)
	assert.Equal(t, 50.0, body.Data.MaxMB)
	assert.Equal(t, 4.0, body.Data.FileMB)
	assert.Equal(t, 3.27, body.Data.AvailableMB)
}
