package read

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/middlewarectx"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/streak"
	progress "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/progress"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Streak(ctx context.Context, uid string) (progress.StreakReport, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).(progress.StreakReport), args.Error(1)
}

func TestStreakHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("report", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Streak", mock.Anything, "u1").Return(progress.StreakReport{
			Streak: 4, GraceUsed: 1, MaxGrace: 2, AtRisk: true,
			Advisory: streak.Advisory{AtRisk: true, GraceRemaining: 1},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/streak", nil)
		req = req.WithContext(middlewarectx.WithUserUID(req.Context(), "u1"))
		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"streak":4`)
		assert.Contains(t, body, `"max_grace":2`)
		assert.Contains(t, body, `"grace_remaining":1`)
	})

	t.Run("service error", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Streak", mock.Anything, "u1").Return(progress.StreakReport{}, errors.New("db")).Once()

		req := httptest.NewRequest(http.MethodGet, "/streak", nil)
		req = req.WithContext(middlewarectx.WithUserUID(req.Context(), "u1"))
		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
