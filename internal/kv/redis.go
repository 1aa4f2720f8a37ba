package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/config"
)

// Redis реализует Store поверх redis.
type Redis struct {
	Db *redis.Client
}

// NewRedis подключается к redis и проверяет соединение.
func NewRedis(ctx context.Context, cfg config.RedisConnection) (*Redis, error) {
	const op = "kv.NewRedis"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Redis{Db: db}, nil
}

// Get возвращает значение по ключу, false если ключа нет.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "kv.Redis.Get"
	val, err := r.Db.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

// Set сохраняет значение.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	const op = "kv.Redis.Set"
	if err := r.Db.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Remove удаляет ключ.
func (r *Redis) Remove(ctx context.Context, key string) error {
	const op = "kv.Redis.Remove"
	if err := r.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Incr увеличивает счётчик и задаёт TTL, если ключ был создан этим вызовом.
func (r *Redis) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	const op = "kv.Redis.Incr"
	n, err := r.Db.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if n == 1 && ttl > 0 {
		if err := r.Db.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}
	return n, nil
}

// Close закрывает соединение.
func (r *Redis) Close() error {
	return r.Db.Close()
}
