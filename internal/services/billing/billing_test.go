package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) UpdateSubscription(ctx context.Context, uid, status string, tier *string) error {
	return m.Called(ctx, uid, status, tier).Error(0)
}

func newService(repo Repository) *BillingService {
	return NewBillingService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ptr(s string) *string { return &s }

func TestBillingService_Apply(t *testing.T) {
	tests := []struct {
		name      string
		event     models.BillingEvent
		repoErr   error
		wantErr   error
		wantWrite bool
	}{
		{name: "activate with tier", event: models.BillingEvent{UserUID: "u1", Status: "active", Tier: ptr("reflection")}, wantWrite: true},
		{name: "cancel keeps tier", event: models.BillingEvent{UserUID: "u1", Status: "canceled"}, wantWrite: true},
		{name: "unknown status stored verbatim", event: models.BillingEvent{UserUID: "u1", Status: "paused_by_bank"}, wantWrite: true},
		{name: "unknown tier", event: models.BillingEvent{UserUID: "u1", Status: "active", Tier: ptr("gold")}, wantErr: ErrInvalidEvent},
		{name: "missing user", event: models.BillingEvent{Status: "active"}, wantErr: ErrInvalidEvent},
		{name: "user not found", event: models.BillingEvent{UserUID: "u9", Status: "active"}, repoErr: storage.ErrNotFound, wantErr: storage.ErrNotFound, wantWrite: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			if tt.wantWrite {
				repo.On("UpdateSubscription", mock.Anything, tt.event.UserUID, tt.event.Status, tt.event.Tier).
					Return(tt.repoErr).Once()
			}

			err := newService(repo).Apply(context.Background(), tt.event)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestBillingService_Handle(t *testing.T) {
	t.Run("malformed body is dropped", func(t *testing.T) {
		repo := new(MockRepository)
		assert.NoError(t, newService(repo).Handle([]byte("{not json")))
		repo.AssertNotCalled(t, "UpdateSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown user is dropped", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UpdateSubscription", mock.Anything, "u9", "active", (*string)(nil)).Return(storage.ErrNotFound).Once()
		assert.NoError(t, newService(repo).Handle([]byte(`{"user_uid":"u9","status":"active"}`)))
	})

	t.Run("storage failure is retried", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UpdateSubscription", mock.Anything, "u1", "active", mock.Anything).Return(errors.New("db down")).Once()
		assert.Error(t, newService(repo).Handle([]byte(`{"user_uid":"u1","status":"active","tier":"initiation"}`)))
	})
}
