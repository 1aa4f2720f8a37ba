// Package services ведёт дневные счётчики лимитированных функций.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/kv"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/day"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/metrics"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
)

var (
	// ErrFeatureLocked — функция недоступна на текущем тарифе.
	ErrFeatureLocked = errors.New("feature not available on current tier")
	// ErrLimitExceeded — дневной лимит функции исчерпан.
	ErrLimitExceeded = errors.New("daily limit exceeded")
)

// counterTTL покрывает сутки с запасом на смещение часов.
const counterTTL = 25 * time.Hour

// UserRepository возвращает пользователя для определения тарифа.
type UserRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
}

// UsageService считает использование функций за текущие сутки UTC.
type UsageService struct {
	users UserRepository
	store kv.Store
	now   func() time.Time
}

// NewUsageService создает новый экземпляр UsageService.
func NewUsageService(users UserRepository, store kv.Store) *UsageService {
	return &UsageService{
		users: users,
		store: store,
		now:   time.Now,
	}
}

// Usage — состояние счётчика функции после списания.
type Usage struct {
	Feature   tier.Feature `json:"feature"`
	Used      int64        `json:"used"`
	Limit     *int         `json:"limit,omitempty"`
	Remaining *int         `json:"remaining,omitempty"`
}

func key(uid string, f tier.Feature, now time.Time) string {
	return fmt.Sprintf("usage:%s:%s:%s", uid, f, day.Key(now))
}

// Consume списывает одно использование функции. Превышение лимита возвращает
// ErrLimitExceeded вместе с текущим состоянием счётчика.
func (s *UsageService) Consume(ctx context.Context, uid string, f tier.Feature) (Usage, error) {
	const op = "services.usage.Consume"
	user, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		return Usage{}, fmt.Errorf("%s: %w", op, err)
	}
	t := access.FeatureTier(user.Account())
	if !tier.HasFeatureAccess(t, f) {
		metrics.FeatureUsage.WithLabelValues(string(f), "locked").Inc()
		return Usage{Feature: f}, fmt.Errorf("%s: %w", op, ErrFeatureLocked)
	}

	now := s.now()
	used, err := s.store.Incr(ctx, key(uid, f, now), counterTTL)
	if err != nil {
		return Usage{}, fmt.Errorf("%s: %w", op, err)
	}
	u := Usage{Feature: f, Used: used}

	limit, limited := tier.FeatureLimit(t, f)
	if !limited {
		metrics.FeatureUsage.WithLabelValues(string(f), "allow").Inc()
		return u, nil
	}
	remaining := max(limit-int(used), 0)
	u.Limit = &limit
	u.Remaining = &remaining
	if int(used) > limit {
		metrics.FeatureUsage.WithLabelValues(string(f), "limited").Inc()
		return u, fmt.Errorf("%s: %w", op, ErrLimitExceeded)
	}
	metrics.FeatureUsage.WithLabelValues(string(f), "allow").Inc()
	return u, nil
}
