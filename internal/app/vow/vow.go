package vow

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/config"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/kv"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/jwt"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/migrations"
	authservice "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/auth"
	billingservice "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/billing"
	preferenceservice "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/preferences"
	progressservice "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/progress"
	usageservice "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/usage"
	vowservice "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/vows"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP-приложение VOW.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	store  *kv.Redis
}

// New подключает хранилища, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	store, err := kv.NewRedis(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	svc := Services{
		Auth:        authservice.NewAuthService(db, jwtMaker),
		Progress:    progressservice.NewProgressService(db, logger),
		Vows:        vowservice.NewVowService(db, logger),
		Usage:       usageservice.NewUsageService(db, store),
		Preferences: preferenceservice.NewPreferenceService(store),
		Billing:     billingservice.NewBillingService(db, logger),
		Health:      db,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, RateLimit{RPS: cfg.RateLimit, Burst: cfg.RateBurst}, cfg.BillingSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		store:  store,
	}, nil
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
