package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/streak"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

var now = time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) ActivityTimes(ctx context.Context, userUID string, since time.Time) ([]time.Time, error) {
	args := m.Called(ctx, userUID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockRepository) ActivityStats(ctx context.Context, userUID string, since time.Time) (models.ActivityStats, error) {
	args := m.Called(ctx, userUID, since)
	return args.Get(0).(models.ActivityStats), args.Error(1)
}

func (m *MockRepository) CountActiveVows(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) CountReflections(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) SumVows(ctx context.Context, userUID string) (storage.VowTotals, error) {
	args := m.Called(ctx, userUID)
	return args.Get(0).(storage.VowTotals), args.Error(1)
}

func (m *MockRepository) ApplyRecovery(ctx context.Context, uid string, expectedTokens, newTokens, cost int, days []time.Time) error {
	args := m.Called(ctx, uid, expectedTokens, newTokens, cost, days)
	return args.Error(0)
}

func newService(repo Repository) *ProgressService {
	svc := NewProgressService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return now }
	return svc
}

func paidUser(t tier.Tier, xp, tokens int) *models.User {
	name := string(t)
	return &models.User{
		UUID:               "u1",
		CreatedAt:          now.AddDate(0, -2, 0),
		SubscriptionStatus: "active",
		SubscriptionTier:   &name,
		XP:                 xp,
		RecoveryTokensUsed: tokens,
	}
}

func trialUser() *models.User {
	created := now.Add(-time.Hour)
	end := access.TrialEndFor(created)
	return &models.User{UUID: "u1", CreatedAt: created, SubscriptionStatus: "trial", TrialEndDate: &end}
}

func TestProgressService_Access(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		repoErr error
		want    access.Decision
		wantErr bool
	}{
		{
			name: "active subscription",
			user: paidUser(tier.Initiation, 0, 0),
			want: access.Decision{HasAccess: true, IsPaid: true},
		},
		{
			name: "fresh trial",
			user: trialUser(),
			want: access.Decision{HasAccess: true, IsTrial: true, DaysLeft: 2},
		},
		{
			name:    "missing user is denied",
			repoErr: storage.ErrNotFound,
			want:    access.Decision{Reason: access.ReasonNoUser, Message: access.ReasonNoUser.Message()},
		},
		{
			name:    "repository failure",
			repoErr: errors.New("db down"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			if tt.user != nil {
				repo.On("GetUserByUID", mock.Anything, "u1").Return(tt.user, nil).Once()
			} else {
				repo.On("GetUserByUID", mock.Anything, "u1").Return(nil, tt.repoErr).Once()
			}

			got, err := newService(repo).Access(context.Background(), "u1")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgressService_Trial(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetUserByUID", mock.Anything, "u1").Return(trialUser(), nil).Once()

	st, err := newService(repo).Trial(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, st.IsTrial)
	assert.Equal(t, 0, st.DaysElapsed)
	assert.Equal(t, 2, st.DaysLeft)
}

func TestProgressService_Feature(t *testing.T) {
	t.Run("trial user sees upgrade target", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByUID", mock.Anything, "u1").Return(trialUser(), nil).Once()

		rep, err := newService(repo).Feature(context.Background(), "u1", "ai_insights")
		require.NoError(t, err)
		assert.False(t, rep.HasAccess)
		require.NotNil(t, rep.UpgradeTo)
		assert.Equal(t, tier.Reflection, *rep.UpgradeTo)
	})

	t.Run("reflection user has limited insights", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByUID", mock.Anything, "u1").Return(paidUser(tier.Reflection, 0, 0), nil).Once()

		rep, err := newService(repo).Feature(context.Background(), "u1", "ai_insights")
		require.NoError(t, err)
		assert.True(t, rep.HasAccess)
		require.NotNil(t, rep.Limit)
		assert.Equal(t, 5, *rep.Limit)
	})

	t.Run("cancelled subscription closes paid features", func(t *testing.T) {
		u := paidUser(tier.Liberation, 0, 0)
		u.SubscriptionStatus = "canceled"
		repo := new(MockRepository)
		repo.On("GetUserByUID", mock.Anything, "u1").Return(u, nil).Once()

		rep, err := newService(repo).Feature(context.Background(), "u1", "data_export")
		require.NoError(t, err)
		assert.False(t, rep.HasAccess)
		assert.Equal(t, tier.Trial, rep.Tier)
	})

	t.Run("unknown feature", func(t *testing.T) {
		repo := new(MockRepository)
		_, err := newService(repo).Feature(context.Background(), "u1", "teleport")
		assert.ErrorIs(t, err, ErrUnknownFeature)
		repo.AssertNotCalled(t, "GetUserByUID", mock.Anything, mock.Anything)
	})
}

func TestProgressService_Streak(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetUserByUID", mock.Anything, "u1").Return(paidUser(tier.Initiation, 0, 0), nil).Once()
	repo.On("ActivityTimes", mock.Anything, "u1", mock.Anything).
		Return([]time.Time{now.Add(-time.Hour), now.AddDate(0, 0, -2)}, nil).Once()

	rep, err := newService(repo).Streak(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Streak)
	assert.Equal(t, 1, rep.GraceUsed)
	assert.Equal(t, 1, rep.MaxGrace)
	assert.False(t, rep.AtRisk)
	require.NotNil(t, rep.LastActivity)
	assert.Equal(t, now.Add(-time.Hour), *rep.LastActivity)
}

func TestProgressService_Recover(t *testing.T) {
	t.Run("success records missed days", func(t *testing.T) {
		last := now.AddDate(0, 0, -3)
		repo := new(MockRepository)
		repo.On("GetUserByUID", mock.Anything, "u1").Return(paidUser(tier.Liberation, 1000, 0), nil).Once()
		repo.On("ActivityTimes", mock.Anything, "u1", mock.Anything).Return([]time.Time{last}, nil).Once()
		wantDays := []time.Time{
			time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		}
		repo.On("ApplyRecovery", mock.Anything, "u1", 0, 1, 100, wantDays).Return(nil).Once()

		res, err := newService(repo).Recover(context.Background(), "u1")
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, 100, res.Cost)
		assert.Equal(t, 900, res.NewXP)
		repo.AssertExpectations(t)
	})

	t.Run("trial tier is refused without writes", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByUID", mock.Anything, "u1").Return(trialUser(), nil).Once()
		repo.On("ActivityTimes", mock.Anything, "u1", mock.Anything).
			Return([]time.Time{now.AddDate(0, 0, -2)}, nil).Once()

		res, err := newService(repo).Recover(context.Background(), "u1")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, streak.ErrRecoveryTrialTier, res.Error)
		repo.AssertNotCalled(t, "ApplyRecovery", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("nothing missed", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByUID", mock.Anything, "u1").Return(paidUser(tier.Liberation, 1000, 0), nil).Once()
		repo.On("ActivityTimes", mock.Anything, "u1", mock.Anything).Return([]time.Time{now}, nil).Once()

		_, err := newService(repo).Recover(context.Background(), "u1")
		assert.ErrorIs(t, err, ErrNothingToRecover)
	})

	t.Run("concurrent recovery conflict", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByUID", mock.Anything, "u1").Return(paidUser(tier.Reflection, 1000, 1), nil).Once()
		repo.On("ActivityTimes", mock.Anything, "u1", mock.Anything).
			Return([]time.Time{now.AddDate(0, 0, -2)}, nil).Once()
		repo.On("ApplyRecovery", mock.Anything, "u1", 1, 2, 250, mock.Anything).Return(storage.ErrConflict).Once()

		_, err := newService(repo).Recover(context.Background(), "u1")
		assert.ErrorIs(t, err, storage.ErrConflict)
	})

	t.Run("missing user", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByUID", mock.Anything, "u1").Return(nil, storage.ErrNotFound).Once()

		res, err := newService(repo).Recover(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, streak.ErrRecoveryNoUser, res.Error)
	})
}

func TestProgressService_Alignment(t *testing.T) {
	repo := new(MockRepository)
	repo.On("CountActiveVows", mock.Anything, "u1").Return(2, nil).Once()
	repo.On("ActivityStats", mock.Anything, "u1", mock.Anything).Return(models.ActivityStats{
		Reflections: []time.Time{now.AddDate(0, 0, -1), now.AddDate(0, 0, -10)},
		Triggers:    3,
	}, nil).Once()
	repo.On("SumVows", mock.Anything, "u1").Return(storage.VowTotals{TotalDays: 30, CompletedDays: 15, MaxStreak: 5}, nil).Once()
	repo.On("CountReflections", mock.Anything, "u1").Return(6, nil).Once()

	rep, err := newService(repo).Alignment(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 55, rep.Score)
	assert.Equal(t, 36, rep.RatioScore)
	assert.NotEmpty(t, rep.Message)
	assert.NotEmpty(t, rep.RatioMessage)
}
