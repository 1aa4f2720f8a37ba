package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/middlewarectx"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/jwt"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*jwt.CustomClaims)
	return claims, args.Error(1)
}

type AccessCheckerMock struct {
	mock.Mock
}

func (m *AccessCheckerMock) Access(ctx context.Context, uid string) (access.Decision, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).(access.Decision), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		claims         *jwt.CustomClaims
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{name: "missing Authorization header", wantStatusCode: http.StatusUnauthorized},
		{name: "invalid Authorization header prefix", authHeader: "Basic sometoken", wantStatusCode: http.StatusUnauthorized},
		{name: "token validation error", authHeader: "Bearer token", mockErr: errors.New("expired"), wantStatusCode: http.StatusUnauthorized},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			claims:         &jwt.CustomClaims{UserUID: "u1", Username: "testuser", Role: "user"},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			if strings.HasPrefix(tt.authHeader, "Bearer ") {
				token := strings.TrimPrefix(tt.authHeader, "Bearer ")
				authMock.On("ValidateToken", mock.Anything, token).Return(tt.claims, tt.mockErr).Once()
			}

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				uid, ok := middlewarectx.UserUIDFrom(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "u1", uid)
				assert.Equal(t, "testuser", r.Context().Value(middlewarectx.User))
				assert.Equal(t, "user", r.Context().Value(middlewarectx.Role))
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			middlewarectx.JWTMiddleware(authMock, newNoopLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			authMock.AssertExpectations(t)
		})
	}
}

func TestAccessMiddleware(t *testing.T) {
	denied := access.Decision{Reason: access.ReasonTrialExpired, Message: access.ReasonTrialExpired.Message()}

	tests := []struct {
		name       string
		uid        string
		decision   access.Decision
		mockErr    error
		wantStatus int
		wantBody   string
		wantCalled bool
	}{
		{name: "no user in context", wantStatus: http.StatusUnauthorized},
		{name: "access granted", uid: "u1", decision: access.Decision{HasAccess: true, IsPaid: true}, wantStatus: http.StatusOK, wantCalled: true},
		{name: "trial expired", uid: "u1", decision: denied, wantStatus: http.StatusForbidden, wantBody: `"reason":"TRIAL_EXPIRED"`},
		{name: "service error", uid: "u1", mockErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(AccessCheckerMock)
			if tt.uid != "" {
				checker.On("Access", mock.Anything, tt.uid).Return(tt.decision, tt.mockErr).Once()
			}

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/vows", nil)
			if tt.uid != "" {
				req = req.WithContext(middlewarectx.WithUserUID(req.Context(), tt.uid))
			}
			rec := httptest.NewRecorder()
			middlewarectx.AccessMiddleware(newNoopLogger(), checker)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := middlewarectx.RateLimitMiddleware(newNoopLogger(), 0.001, 2)(next)

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
