// Package services хранит пользовательские настройки в хранилище ключ-значение.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/kv"
)

var (
	// ErrUnknownKey — настройка не поддерживается.
	ErrUnknownKey = errors.New("unknown preference key")
	// ErrInvalidValue — значение не прошло проверку.
	ErrInvalidValue = errors.New("invalid preference value")
)

type validator func(string) bool

func oneOf(values ...string) validator {
	return func(v string) bool { return slices.Contains(values, v) }
}

var keys = map[string]validator{
	"theme":         oneOf("light", "dark", "system"),
	"notifications": oneOf("on", "off"),
	"reminder_time": func(v string) bool {
		_, err := time.Parse("15:04", v)
		return err == nil
	},
	"timezone": func(v string) bool {
		if v == "" {
			return false
		}
		_, err := time.LoadLocation(v)
		return err == nil
	},
}

var defaults = map[string]string{
	"theme":         "system",
	"notifications": "on",
	"reminder_time": "20:00",
	"timezone":      "UTC",
}

// PreferenceService читает и сохраняет настройки пользователя.
type PreferenceService struct {
	store kv.Store
}

// NewPreferenceService создает новый экземпляр PreferenceService.
func NewPreferenceService(store kv.Store) *PreferenceService {
	return &PreferenceService{store: store}
}

func storeKey(uid, key string) string {
	return "pref:" + uid + ":" + key
}

// Get возвращает сохранённое значение или значение по умолчанию.
func (s *PreferenceService) Get(ctx context.Context, uid, key string) (string, error) {
	const op = "services.preferences.Get"
	if _, ok := keys[key]; !ok {
		return "", fmt.Errorf("%s: %w", op, ErrUnknownKey)
	}
	v, found, err := s.store.Get(ctx, storeKey(uid, key))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return defaults[key], nil
	}
	return v, nil
}

// Set проверяет и сохраняет значение без срока хранения.
func (s *PreferenceService) Set(ctx context.Context, uid, key, value string) error {
	const op = "services.preferences.Set"
	valid, ok := keys[key]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrUnknownKey)
	}
	if !valid(value) {
		return fmt.Errorf("%s: %w", op, ErrInvalidValue)
	}
	if err := s.store.Set(ctx, storeKey(uid, key), value, 0); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
