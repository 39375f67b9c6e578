package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"

	"docvault-web-server/config"
	"docvault-web-server/internal/queue"
	"docvault-web-server/internal/repository"
	"docvault-web-server/internal/service"
	"docvault-web-server/internal/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatalf("Ошибка создания S3 сервиса: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	reconciler := worker.NewReconciler(db, userRepo, docRepo, s3Service)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
	})

	scheduler := asynq.NewScheduler(redisOpt, nil)

	// полный пересчёт всех пользователей раз в час
	fullSweep, err := json.Marshal(queue.ReconcilePayload{})
	if err != nil {
		log.Fatalf("Ошибка сериализации задачи пересчёта: %v", err)
	}
	if _, err := scheduler.Register("@every 1h", asynq.NewTask(queue.TaskReconcileQuota, fullSweep)); err != nil {
		log.Fatalf("Ошибка регистрации задачи планировщика: %v", err)
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Fatalf("ошибка работы планировщика: %v", err)
		}
	}()

	go func() {
		log.Println("воркер пересчёта квот запущен")
		if err := srv.Run(reconciler.Handler()); err != nil {
			log.Fatalf("ошибка работы воркера: %v", err)
		}
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalChannel
	log.Printf("получен сигнал %v остановки работы воркера ", sig)

	scheduler.Shutdown()
	srv.Shutdown()
	log.Println("Воркер успешно остановлен")
}
