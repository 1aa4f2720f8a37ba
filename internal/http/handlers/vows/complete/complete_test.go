package complete

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/middlewarectx"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/vow"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CompleteDay(ctx context.Context, uid, vowID string) (*vow.Vow, error) {
	args := m.Called(ctx, uid, vowID)
	v, _ := args.Get(0).(*vow.Vow)
	return v, args.Error(1)
}

func TestCompleteHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		vow        *vow.Vow
		mockErr    error
		wantStatus int
		wantBody   string
	}{
		{name: "completed", vow: &vow.Vow{ID: "v1", CurrentDay: 3, CurrentStreak: 3}, wantStatus: http.StatusOK, wantBody: `"current_day":3`},
		{name: "not found", mockErr: fmt.Errorf("op: %w", storage.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "twice a day", mockErr: fmt.Errorf("op: %w", vow.ErrAlreadyCompletedToday), wantStatus: http.StatusConflict, wantBody: "already completed"},
		{name: "inactive", mockErr: fmt.Errorf("op: %w", vow.ErrNotActive), wantStatus: http.StatusConflict, wantBody: "not active"},
		{name: "failure", mockErr: errors.New("db"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("CompleteDay", mock.Anything, "u1", "v1").Return(tt.vow, tt.mockErr).Once()

			req := httptest.NewRequest(http.MethodPost, "/vows/v1/complete", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "v1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithUserUID(ctx, "u1"))

			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
