// Package kv предоставляет хранилище ключ-значение для пользовательских настроек
// и счётчиков использования. Реализации: Redis и in-memory для тестов.
package kv

import (
	"context"
	"time"
)

// Store описывает хранилище строковых значений с необязательным временем жизни.
// ttl == 0 означает хранение без срока.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
	// Incr атомарно увеличивает счётчик и возвращает новое значение.
	// Время жизни устанавливается только при создании ключа.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
