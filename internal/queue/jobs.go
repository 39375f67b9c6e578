package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// TaskReconcileQuota : пересчёт total_size и чистка дескрипторов.
	// Ставится планировщиком раз в час и API при обнаруженном частичном сбое.
	TaskReconcileQuota = "quota:reconcile"
)

// ReconcilePayload : пустой UserUUID означает пересчёт всех пользователей
type ReconcilePayload struct {
	UserUUID string `json:"user_uuid"`
}

// Enqueuer : клиент очереди для API
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueReconcile : ставит задачу пересчёта квоты одного пользователя
func (e *Enqueuer) EnqueueReconcile(ctx context.Context, userUUID string) error {
	data, err := json.Marshal(ReconcilePayload{UserUUID: userUUID})
	if err != nil {
		return fmt.Errorf("ошибка сериализации задачи: %w", err)
	}

	task := asynq.NewTask(TaskReconcileQuota, data)
	if _, err := e.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("не удалось поставить задачу пересчёта: %w", err)
	}

	return nil
}
