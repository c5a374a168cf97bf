package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storecrew/internal/config"
	"storecrew/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisProgressRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisProgressRepository(client *redis.Client, ttl time.Duration) *RedisProgressRepository {
	return &RedisProgressRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisProgressRepository) GetProgress(ctx context.Context, token string) (*models.IntakeProgress, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	key := progressKey(token)
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress from redis: %w", err)
	}

	var progress models.IntakeProgress
	if err := json.Unmarshal([]byte(val), &progress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}

	return &progress, nil
}

func (r *RedisProgressRepository) SetProgress(ctx context.Context, progress *models.IntakeProgress) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	if err := r.client.Set(ctx, progressKey(progress.Token), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set progress in redis: %w", err)
	}

	return nil
}

func (r *RedisProgressRepository) ClearProgress(ctx context.Context, token string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, progressKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete progress from redis: %w", err)
	}
	return nil
}

func progressKey(token string) string {
	return "intake_progress:" + token
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
