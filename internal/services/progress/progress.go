// Package services собирает решения о доступе, серии и показателе соответствия
// из данных хранилища и чистых правил пакета rules.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/day"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/metrics"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/alignment"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/streak"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

var (
	// ErrUnknownFeature — запрошена функция, которой нет в таблице тарифов.
	ErrUnknownFeature = errors.New("unknown feature")
	// ErrNothingToRecover — пропущенных дней нет.
	ErrNothingToRecover = errors.New("no missed days to recover")
)

// Repository описывает данные, нужные для расчёта прогресса.
type Repository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	ActivityTimes(ctx context.Context, userUID string, since time.Time) ([]time.Time, error)
	ActivityStats(ctx context.Context, userUID string, since time.Time) (models.ActivityStats, error)
	CountActiveVows(ctx context.Context, userUID string) (int, error)
	CountReflections(ctx context.Context, userUID string) (int, error)
	SumVows(ctx context.Context, userUID string) (storage.VowTotals, error)
	ApplyRecovery(ctx context.Context, uid string, expectedTokens, newTokens, cost int, days []time.Time) error
}

// ProgressService вычисляет доступ, серию, восстановление и показатель соответствия.
type ProgressService struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewProgressService создает новый экземпляр ProgressService.
func NewProgressService(repo Repository, log *slog.Logger) *ProgressService {
	return &ProgressService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// account загружает снимок учётной записи. Отсутствующий пользователь даёт nil без ошибки.
func (s *ProgressService) account(ctx context.Context, uid string) (*access.Account, error) {
	user, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.Account(), nil
}

// Access вычисляет решение о доступе для пользователя.
func (s *ProgressService) Access(ctx context.Context, uid string) (access.Decision, error) {
	const op = "services.progress.Access"
	acc, err := s.account(ctx, uid)
	if err != nil {
		return access.Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	d := access.Evaluate(acc, s.now())
	metrics.AccessDecisions.WithLabelValues(metrics.Outcome(d.HasAccess), string(d.Reason)).Inc()
	return d, nil
}

// Trial возвращает сводку по пробному периоду.
func (s *ProgressService) Trial(ctx context.Context, uid string) (access.TrialStatus, error) {
	const op = "services.progress.Trial"
	acc, err := s.account(ctx, uid)
	if err != nil {
		return access.TrialStatus{}, fmt.Errorf("%s: %w", op, err)
	}
	return access.Trial(acc, s.now()), nil
}

// FeatureReport — доступность функции для пользователя.
type FeatureReport struct {
	Feature   tier.Feature `json:"feature"`
	HasAccess bool         `json:"has_access"`
	Limit     *int         `json:"limit,omitempty"`
	Tier      tier.Tier    `json:"tier"`
	UpgradeTo *tier.Tier   `json:"upgrade_to,omitempty"`
}

// Feature проверяет доступ к функции. Без доступа к продукту функции закрыты.
func (s *ProgressService) Feature(ctx context.Context, uid, name string) (FeatureReport, error) {
	const op = "services.progress.Feature"
	f, ok := tier.ParseFeature(name)
	if !ok {
		return FeatureReport{}, fmt.Errorf("%s: %w", op, ErrUnknownFeature)
	}
	acc, err := s.account(ctx, uid)
	if err != nil {
		return FeatureReport{}, fmt.Errorf("%s: %w", op, err)
	}

	t := access.FeatureTier(acc)
	rep := FeatureReport{Feature: f, Tier: t}
	if access.Evaluate(acc, s.now()).HasAccess {
		rep.HasAccess = tier.HasFeatureAccess(t, f)
	}
	if rep.HasAccess {
		if n, limited := tier.FeatureLimit(t, f); limited {
			rep.Limit = &n
		}
	} else if target, ok := tier.UpgradeTarget(f); ok && tier.Rank(target) > tier.Rank(t) {
		rep.UpgradeTo = &target
	}
	metrics.FeatureUsage.WithLabelValues(string(f), "check_"+metrics.Outcome(rep.HasAccess)).Inc()
	return rep, nil
}

// StreakReport — текущее состояние серии пользователя.
type StreakReport struct {
	Streak       int             `json:"streak"`
	GraceUsed    int             `json:"grace_used"`
	MaxGrace     int             `json:"max_grace"`
	AtRisk       bool            `json:"at_risk"`
	LastActivity *time.Time      `json:"last_activity,omitempty"`
	Advisory     streak.Advisory `json:"advisory"`
}

func (s *ProgressService) history(ctx context.Context, uid string, now time.Time) ([]time.Time, time.Time, error) {
	since := day.Start(now).AddDate(0, 0, -streak.HistoryWindow)
	times, err := s.repo.ActivityTimes(ctx, uid, since)
	if err != nil {
		return nil, time.Time{}, err
	}
	var last time.Time
	for _, t := range times {
		if t.After(last) {
			last = t
		}
	}
	return times, last, nil
}

// Streak вычисляет серию с учётом льготных дней тарифа.
func (s *ProgressService) Streak(ctx context.Context, uid string) (StreakReport, error) {
	const op = "services.progress.Streak"
	now := s.now()
	acc, err := s.account(ctx, uid)
	if err != nil {
		return StreakReport{}, fmt.Errorf("%s: %w", op, err)
	}
	times, last, err := s.history(ctx, uid, now)
	if err != nil {
		return StreakReport{}, fmt.Errorf("%s: %w", op, err)
	}

	t := access.FeatureTier(acc)
	st := streak.CalculateWithGraceTimes(times, t, now)
	adv := streak.Advise(t, st, last, now)
	rep := StreakReport{
		Streak:    st.Streak,
		GraceUsed: st.GraceUsed,
		MaxGrace:  streak.MaxGrace(t),
		AtRisk:    adv.AtRisk,
		Advisory:  adv,
	}
	if !last.IsZero() {
		rep.LastActivity = &last
	}
	return rep, nil
}

// Recover восстанавливает серию за XP. Отказ по правилам возвращается
// в RecoveryResult без ошибки, состояние при этом не меняется.
func (s *ProgressService) Recover(ctx context.Context, uid string) (streak.RecoveryResult, error) {
	const op = "services.progress.Recover"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", uid))
	now := s.now()

	acc, err := s.account(ctx, uid)
	if err != nil {
		return streak.RecoveryResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if acc == nil {
		res := streak.Recover(nil, 0)
		metrics.StreakRecoveries.WithLabelValues(string(res.Error)).Inc()
		return res, nil
	}
	_, last, err := s.history(ctx, uid, now)
	if err != nil {
		return streak.RecoveryResult{}, fmt.Errorf("%s: %w", op, err)
	}
	missed := streak.DaysMissed(last, now)
	if missed == 0 {
		return streak.RecoveryResult{}, fmt.Errorf("%s: %w", op, ErrNothingToRecover)
	}

	snapshot := *acc
	t := access.FeatureTier(acc)
	snapshot.Tier = &t
	res := streak.Recover(&snapshot, missed)
	if !res.Success {
		metrics.StreakRecoveries.WithLabelValues(string(res.Error)).Inc()
		log.Info("streak recovery denied", slog.String("reason", string(res.Error)))
		return res, nil
	}

	days := make([]time.Time, 0, missed)
	start := day.Start(last)
	for i := 1; i <= missed; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	if err := s.repo.ApplyRecovery(ctx, uid, acc.RecoveryTokensUsed, res.TokensUsed, res.Cost, days); err != nil {
		log.Error("failed to apply recovery", sl.Err(err))
		return streak.RecoveryResult{}, fmt.Errorf("%s: %w", op, err)
	}
	metrics.StreakRecoveries.WithLabelValues("success").Inc()
	log.Info("streak recovered", slog.Int("days", missed), slog.Int("cost", res.Cost))
	return res, nil
}

// AlignmentReport — показатель соответствия в обоих вариантах расчёта.
type AlignmentReport struct {
	Score        int    `json:"score"`
	Message      string `json:"message"`
	RatioScore   int    `json:"ratio_score"`
	RatioMessage string `json:"ratio_message"`
}

// Alignment считает показатель соответствия по обетам, рефлексиям и триггерам.
func (s *ProgressService) Alignment(ctx context.Context, uid string) (AlignmentReport, error) {
	const op = "services.progress.Alignment"
	now := s.now()

	active, err := s.repo.CountActiveVows(ctx, uid)
	if err != nil {
		return AlignmentReport{}, fmt.Errorf("%s: %w", op, err)
	}
	stats, err := s.repo.ActivityStats(ctx, uid, now.Add(-alignment.RecentWindow))
	if err != nil {
		return AlignmentReport{}, fmt.Errorf("%s: %w", op, err)
	}
	totals, err := s.repo.SumVows(ctx, uid)
	if err != nil {
		return AlignmentReport{}, fmt.Errorf("%s: %w", op, err)
	}
	reflections, err := s.repo.CountReflections(ctx, uid)
	if err != nil {
		return AlignmentReport{}, fmt.Errorf("%s: %w", op, err)
	}

	score := alignment.CountBased(active, alignment.RecentCount(stats.Reflections, now), totals.MaxStreak)
	ratio := alignment.RatioBased(alignment.RatioInputs{
		TotalVowDays:  totals.TotalDays,
		CompletedDays: totals.CompletedDays,
		Reflections:   reflections,
		Triggers:      stats.Triggers,
	})
	return AlignmentReport{
		Score:        score,
		Message:      alignment.Message(score),
		RatioScore:   ratio,
		RatioMessage: alignment.Message(ratio),
	}, nil
}
