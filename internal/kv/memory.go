package kv

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type item struct {
	value   string
	expires time.Time
}

// Memory — потокобезопасная реализация Store в памяти процесса.
type Memory struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time
}

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]item), now: time.Now}
}

func (m *Memory) live(key string) (item, bool) {
	it, ok := m.items[key]
	if !ok {
		return item{}, false
	}
	if !it.expires.IsZero() && !m.now().Before(it.expires) {
		delete(m.items, key)
		return item{}, false
	}
	return it, true
}

func (m *Memory) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

// Get возвращает значение по ключу.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.live(key)
	return it.value, ok, nil
}

// Set сохраняет значение.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = item{value: value, expires: m.expiry(ttl)}
	return nil
}

// Remove удаляет ключ.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Incr увеличивает счётчик. Нечисловое значение считается нулём.
func (m *Memory) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.live(key)
	if !ok {
		it = item{expires: m.expiry(ttl)}
	}
	n, _ := strconv.ParseInt(it.value, 10, 64)
	n++
	it.value = strconv.FormatInt(n, 10)
	m.items[key] = it
	return n, nil
}
