// Package services содержит операции над обетами, рефлексиями и триггерами.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/vow"
)

// XPPerDay — опыт за отметку дня обета.
const XPPerDay = 10

var (
	// ErrVowLimit — достигнут лимит активных обетов тарифа.
	ErrVowLimit = errors.New("active vow limit reached")
	// ErrFeatureLocked — функция недоступна на текущем тарифе.
	ErrFeatureLocked = errors.New("feature not available on current tier")
)

// Repository описывает хранилище обетов и активности.
type Repository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	CreateVow(ctx context.Context, v *vow.Vow) error
	GetVow(ctx context.Context, userUID, id string) (*vow.Vow, error)
	ListVows(ctx context.Context, userUID string) ([]*vow.Vow, error)
	CountActiveVows(ctx context.Context, userUID string) (int, error)
	CompleteVowDay(ctx context.Context, v *vow.Vow, prevDay, xp int) error
	AddActivity(ctx context.Context, a models.Activity) error
}

// VowService управляет обетами пользователя.
type VowService struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewVowService создает новый экземпляр VowService.
func NewVowService(repo Repository, log *slog.Logger) *VowService {
	return &VowService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

func (s *VowService) featureTier(ctx context.Context, uid string) (tier.Tier, error) {
	user, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return "", err
	}
	return access.FeatureTier(user.Account()), nil
}

// Create создаёт обет. Без unlimited_vows число активных обетов ограничено лимитом basic_vows.
func (s *VowService) Create(ctx context.Context, uid, identity, boundary string, duration int) (*vow.Vow, error) {
	const op = "services.vows.Create"
	t, err := s.featureTier(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !tier.HasFeatureAccess(t, tier.UnlimitedVows) {
		limit, _ := tier.FeatureLimit(t, tier.BasicVows)
		active, err := s.repo.CountActiveVows(ctx, uid)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if active >= limit {
			return nil, fmt.Errorf("%s: %w", op, ErrVowLimit)
		}
	}

	v, err := vow.New(uuid.NewString(), uid, identity, boundary, duration, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.CreateVow(ctx, v); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("vow created", slog.String("op", op), slog.String("vow_id", v.ID))
	return v, nil
}

// List возвращает обеты пользователя.
func (s *VowService) List(ctx context.Context, uid string) ([]*vow.Vow, error) {
	const op = "services.vows.List"
	vows, err := s.repo.ListVows(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vows, nil
}

// CompleteDay отмечает выполнение дня обета и начисляет опыт.
func (s *VowService) CompleteDay(ctx context.Context, uid, vowID string) (*vow.Vow, error) {
	const op = "services.vows.CompleteDay"
	v, err := s.repo.GetVow(ctx, uid, vowID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	prev := v.CurrentDay
	if err := v.CompleteDay(s.now().UTC()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.CompleteVowDay(ctx, v, prev, XPPerDay); err != nil {
		s.log.Error("failed to save vow progress", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// AddReflection сохраняет рефлексию.
func (s *VowService) AddReflection(ctx context.Context, uid string, vowID *string, note string) (*models.Activity, error) {
	return s.addActivity(ctx, "services.vows.AddReflection", uid, vowID, note, models.CategoryReflection, tier.DailyReflections)
}

// AddTrigger сохраняет триггер. Доступно с тарифа, открывающего trigger_logging.
func (s *VowService) AddTrigger(ctx context.Context, uid string, vowID *string, note string) (*models.Activity, error) {
	return s.addActivity(ctx, "services.vows.AddTrigger", uid, vowID, note, models.CategoryTrigger, tier.TriggerLogging)
}

func (s *VowService) addActivity(ctx context.Context, op, uid string, vowID *string, note string,
	category models.Category, feature tier.Feature) (*models.Activity, error) {
	t, err := s.featureTier(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !tier.HasFeatureAccess(t, feature) {
		return nil, fmt.Errorf("%s: %w", op, ErrFeatureLocked)
	}
	if vowID != nil {
		if _, err := s.repo.GetVow(ctx, uid, *vowID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	a := models.Activity{
		ID:        uuid.NewString(),
		UserUID:   uid,
		VowID:     vowID,
		Category:  category,
		Note:      note,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AddActivity(ctx, a); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}
