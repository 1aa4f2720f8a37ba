package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, email, username, password string) (string, error) {
	args := m.Called(ctx, email, username, password)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	valid := Request{Username: "user1", Password: "password123", Email: "user1@example.com"}

	tests := []struct {
		name           string
		requestBody    any
		callService    bool
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{name: "valid registration", requestBody: valid, callService: true, wantStatusCode: http.StatusCreated, wantStatus: "OK"},
		{name: "invalid json body", requestBody: "not a json", wantStatusCode: http.StatusBadRequest, wantError: "invalid request body", wantStatus: "Error"},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Username: "user1", Email: "user1@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - bad email",
			requestBody:    Request{Username: "user1", Password: "password123", Email: "nope"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email must be a valid email",
			wantStatus:     "Error",
		},
		{name: "duplicate user", requestBody: valid, callService: true, mockErr: storage.ErrUserExists, wantStatusCode: http.StatusConflict, wantError: "user already exists", wantStatus: "Error"},
		{name: "storage error", requestBody: valid, callService: true, mockErr: errors.New("db down"), wantStatusCode: http.StatusInternalServerError, wantError: "failed to register user", wantStatus: "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				uid := ""
				if tt.mockErr == nil {
					uid = "uid-1"
				}
				svc.On("Register", mock.Anything, "user1@example.com", "user1", "password123").Return(uid, tt.mockErr).Once()
			}

			var body []byte
			if s, ok := tt.requestBody.(string); ok {
				body = []byte(s)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data := got["data"].(map[string]any)
				assert.Equal(t, "uid-1", data["user_uid"])
			}
			svc.AssertExpectations(t)
		})
	}
}
