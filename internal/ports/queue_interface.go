package ports

import "context"

// ReconcileEnqueuer : постановка задачи пересчёта квоты пользователя.
// Вызывается при обнаруженном частичном сбое (осиротевший объект в S3),
// автоматических ретраев у самих мутаций нет.
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, userUUID string) error
}
