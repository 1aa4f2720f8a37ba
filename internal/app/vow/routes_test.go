package vow

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/billing/events"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/kv"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/jwt"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
	preferenceservice "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/preferences"
)

const billingSecret = "whsec_test"

type stubChecker struct{}

func (stubChecker) CheckDatabaseReady(context.Context) error { return nil }

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	RegisterRoutes(r, logger, Services{
		Preferences: preferenceservice.NewPreferenceService(kv.NewMemory()),
		Health:      stubChecker{},
	}, RateLimit{RPS: 100, Burst: 100}, billingSecret)
	return r
}

func TestRoutes_Open(t *testing.T) {
	r := newRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tiers", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "liberation")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_ProtectedWithoutToken(t *testing.T) {
	r := newRouter(t)

	for _, path := range []string{"/api/v1/access", "/api/v1/streak", "/api/v1/vows", "/api/v1/preferences/theme"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

type tokenAuth struct {
	AuthService
	maker *jwt.MakerImpl
}

func (a tokenAuth) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return a.maker.ParseToken(token)
}

type deniedProgress struct {
	ProgressService
}

func (deniedProgress) Access(context.Context, string) (access.Decision, error) {
	return access.Evaluate(&access.Account{Status: access.StatusCanceled}, time.Now()), nil
}

func TestRoutes_AccessGate(t *testing.T) {
	maker := jwt.NewJWTMaker("secret", time.Hour)
	token, err := maker.GenerateToken("u1", "alice", "user")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	RegisterRoutes(r, logger, Services{
		Auth:     tokenAuth{maker: maker},
		Progress: deniedProgress{},
		Health:   stubChecker{},
	}, RateLimit{RPS: 100, Burst: 100}, billingSecret)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vows", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), string(access.ReasonSubscriptionCancelled))
}

type recordingBilling struct {
	applied []models.BillingEvent
}

func (b *recordingBilling) Apply(_ context.Context, ev models.BillingEvent) error {
	b.applied = append(b.applied, ev)
	return nil
}

func TestRoutes_BillingRequiresSignature(t *testing.T) {
	billing := &recordingBilling{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	RegisterRoutes(r, logger, Services{
		Billing: billing,
		Health:  stubChecker{},
	}, RateLimit{RPS: 100, Burst: 100}, billingSecret)

	body := []byte(`{"user_uid":"6f1d2b7e-3c4a-4f5e-9a8b-1c2d3e4f5a6b","status":"active","tier":"liberation"}`)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/billing/events", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, billing.applied)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/events", bytes.NewReader(body))
	req.Header.Set(events.SignatureHeader, events.Sign(billingSecret, body))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, billing.applied, 1)
	assert.Equal(t, "active", billing.applied[0].Status)
}
