// Package services применяет события биллинга к учётным записям.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/metrics"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

// ErrInvalidEvent — событие без пользователя, без статуса или с неизвестным тарифом.
var ErrInvalidEvent = errors.New("invalid billing event")

const handleTimeout = 5 * time.Second

// Repository сохраняет статус и тариф подписки.
type Repository interface {
	UpdateSubscription(ctx context.Context, uid, status string, tier *string) error
}

// BillingService применяет изменения статуса подписки.
type BillingService struct {
	repo Repository
	log  *slog.Logger
}

// NewBillingService создает новый экземпляр BillingService.
func NewBillingService(repo Repository, log *slog.Logger) *BillingService {
	return &BillingService{
		repo: repo,
		log:  log,
	}
}

// Apply сохраняет статус подписки как есть. Неизвестные статусы не отклоняются:
// они сохраняются и при проверке доступа дают отказ.
func (s *BillingService) Apply(ctx context.Context, ev models.BillingEvent) error {
	const op = "services.billing.Apply"
	if ev.UserUID == "" || ev.Status == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidEvent)
	}
	if ev.Tier != nil {
		if _, ok := tier.ParseTier(*ev.Tier); !ok {
			return fmt.Errorf("%s: %w: tier %q", op, ErrInvalidEvent, *ev.Tier)
		}
	}
	if err := s.repo.UpdateSubscription(ctx, ev.UserUID, ev.Status, ev.Tier); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.BillingEvents.WithLabelValues(ev.Status).Inc()
	s.log.Info("subscription updated",
		slog.String("op", op),
		slog.String("user_uid", ev.UserUID),
		slog.String("status", ev.Status),
	)
	return nil
}

// Handle обрабатывает сообщение из очереди. Некорректные сообщения и события
// для неизвестных пользователей подтверждаются и отбрасываются, остальные
// ошибки возвращают сообщение в очередь.
func (s *BillingService) Handle(body []byte) error {
	const op = "services.billing.Handle"
	log := s.log.With(slog.String("op", op))

	var ev models.BillingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		log.Warn("dropping malformed billing event", sl.Err(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()
	err := s.Apply(ctx, ev)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidEvent), errors.Is(err, storage.ErrNotFound):
		log.Warn("dropping billing event", slog.String("user_uid", ev.UserUID), sl.Err(err))
		return nil
	default:
		return err
	}
}
