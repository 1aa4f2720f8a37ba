package create

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/middlewarectx"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/vow"
	vows "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/vows"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, uid, identity, boundary string, duration int) (*vow.Vow, error) {
	args := m.Called(ctx, uid, identity, boundary, duration)
	v, _ := args.Get(0).(*vow.Vow)
	return v, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	valid := `{"identity":"a runner","boundary":"skip training","duration":30}`

	tests := []struct {
		name       string
		body       string
		mockSetup  func(m *MockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: valid,
			mockSetup: func(m *MockService) {
				m.On("Create", mock.Anything, "u1", "a runner", "skip training", 30).
					Return(&vow.Vow{ID: "v1", Statement: vow.CreateStatement("a runner", "skip training")}, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"id":"v1"`,
		},
		{
			name:       "bad json",
			body:       `{`,
			mockSetup:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing duration",
			body:       `{"identity":"a","boundary":"b"}`,
			mockSetup:  func(*MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "tier limit",
			body: valid,
			mockSetup: func(m *MockService) {
				m.On("Create", mock.Anything, "u1", "a runner", "skip training", 30).
					Return(nil, fmt.Errorf("op: %w", vows.ErrVowLimit)).Once()
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "service failure",
			body: valid,
			mockSetup: func(m *MockService) {
				m.On("Create", mock.Anything, "u1", "a runner", "skip training", 30).
					Return(nil, errors.New("db")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.mockSetup(svc)

			req := httptest.NewRequest(http.MethodPost, "/vows", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithUserUID(req.Context(), "u1"))
			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
