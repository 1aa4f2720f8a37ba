// Package services рассылает напоминания о серии под угрозой и окончании
// пробного периода.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/kv"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/day"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/rabbitmq"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/metrics"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/streak"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

const (
	trialEndingMessage = "Your free trial ends tomorrow. Choose a plan to keep your progress."
	dedupeTTL          = 25 * time.Hour
)

// Repository постранично возвращает пользователей с моментом последней активности.
type Repository interface {
	ListUsersWithLastActivity(ctx context.Context, limit, offset int) ([]storage.UserActivity, error)
}

// Publisher публикует сообщение с ключом маршрутизации.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// SchedulerService формирует уведомления, не чаще одного в сутки на тип и пользователя.
type SchedulerService struct {
	repo  Repository
	pub   Publisher
	store kv.Store
	log   *slog.Logger
	batch int
	now   func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo Repository, pub Publisher, store kv.Store, log *slog.Logger, batch int) *SchedulerService {
	if batch <= 0 {
		batch = 500
	}
	return &SchedulerService{
		repo:  repo,
		pub:   pub,
		store: store,
		log:   log,
		batch: batch,
		now:   time.Now,
	}
}

// Start запускает проход сразу и далее с интервалом interval до отмены ctx.
func (s *SchedulerService) Start(ctx context.Context, interval time.Duration) {
	const op = "services.scheduler.Start"
	log := s.log.With(slog.String("op", op))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		sent, err := s.RunOnce(ctx)
		if err != nil {
			log.Error("scheduler pass failed", sl.Err(err))
		} else {
			log.Info("scheduler pass finished", slog.Int("sent", sent))
		}
		select {
		case <-ctx.Done():
			log.Info("scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce обходит всех пользователей и возвращает число опубликованных уведомлений.
func (s *SchedulerService) RunOnce(ctx context.Context) (int, error) {
	const op = "services.scheduler.RunOnce"
	now := s.now()
	sent := 0

	for offset := 0; ; offset += s.batch {
		if err := ctx.Err(); err != nil {
			return sent, fmt.Errorf("%s: %w", op, err)
		}
		page, err := s.repo.ListUsersWithLastActivity(ctx, s.batch, offset)
		if err != nil {
			return sent, fmt.Errorf("%s: %w", op, err)
		}
		for _, ua := range page {
			for _, n := range notificationsFor(ua, now) {
				ok, err := s.publishOnce(ctx, n, now)
				if err != nil {
					s.log.Error("failed to publish notification",
						slog.String("op", op),
						slog.String("user_uid", n.UserUID),
						slog.String("kind", n.Kind),
						sl.Err(err))
					continue
				}
				if ok {
					sent++
				}
			}
		}
		if len(page) < s.batch {
			return sent, nil
		}
	}
}

// notificationsFor определяет уведомления для пользователя на момент now.
func notificationsFor(ua storage.UserActivity, now time.Time) []models.Notification {
	if ua.User == nil {
		return nil
	}
	acc := ua.User.Account()
	var res []models.Notification

	if ua.LastActivity != nil {
		last := *ua.LastActivity
		t := access.FeatureTier(acc)
		alive := streak.DaysMissed(last, now) <= streak.MaxGrace(t)
		if alive && streak.AtRisk(last, now) {
			adv := streak.Advise(t, streak.State{Streak: 1}, last, now)
			res = append(res, notification(ua.User, rabbitmq.KeyStreakAtRisk, adv.Message))
		}
	}

	if acc.Status == access.StatusTrial {
		end := acc.TrialEnd()
		if now.Before(end) && access.TrialDaysLeft(end, now) == 1 {
			res = append(res, notification(ua.User, rabbitmq.KeyTrialEnding, trialEndingMessage))
		}
	}
	return res
}

func notification(u *models.User, kind, message string) models.Notification {
	return models.Notification{
		UserUID:  u.UUID,
		Email:    u.Email,
		Username: u.Username,
		Kind:     kind,
		Message:  message,
	}
}

// publishOnce публикует уведомление, если сегодня такое ещё не отправлялось.
func (s *SchedulerService) publishOnce(ctx context.Context, n models.Notification, now time.Time) (bool, error) {
	key := fmt.Sprintf("notified:%s:%s:%s", n.Kind, n.UserUID, day.Key(now))
	count, err := s.store.Incr(ctx, key, dedupeTTL)
	if err != nil {
		return false, err
	}
	if count > 1 {
		return false, nil
	}
	if err := s.pub.Publish(n.Kind, n); err != nil {
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			s.log.Warn("failed to reset notification marker", sl.Err(rmErr))
		}
		return false, err
	}
	metrics.NotificationsPublished.WithLabelValues(n.Kind).Inc()
	return true, nil
}
