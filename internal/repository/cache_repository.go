package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"docvault-web-server/config"
	"docvault-web-server/internal/model"
	"docvault-web-server/internal/util"
)

type CacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, ttl time.Duration) *CacheRepository {
	return &CacheRepository{rdb, ttl}
}

// SetUserDocuments : кэширует список дескрипторов пользователя.
// Подписанные ссылки не кэшируются — они выписываются заново на каждое чтение.
func (r *CacheRepository) SetUserDocuments(ctx context.Context, userUUID string, documents model.DescriptorList) error {
	data, err := json.Marshal(documents)
	if err != nil {
		return util.LogError("ошибка сериализации списка дескрипторов", err)
	}

	cmd := r.client.Client.Set(ctx, r.key(userUUID), data, r.ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *CacheRepository) GetUserDocuments(ctx context.Context, userUUID string) (model.DescriptorList, error) {
	val, err := r.client.Client.Get(ctx, r.key(userUUID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // нет в кэше
	} else if err != nil {
		return nil, util.LogError("ошибка получения списка из Redis", err)
	}

	var documents model.DescriptorList
	if err := json.Unmarshal([]byte(val), &documents); err != nil {
		return nil, util.LogError("ошибка десериализации списка из кэша", err)
	}
	return documents, nil
}

// InvalidateUserDocuments : сбрасывает кэш после любой мутации списка
func (r *CacheRepository) InvalidateUserDocuments(ctx context.Context, userUUID string) error {
	if err := r.client.Client.Del(ctx, r.key(userUUID)).Err(); err != nil {
		return util.LogError("ошибка удаления списка из Redis", err)
	}
	return nil
}

func (r *CacheRepository) key(userUUID string) string {
	return fmt.Sprintf("user-documents:%s", userUUID)
}
