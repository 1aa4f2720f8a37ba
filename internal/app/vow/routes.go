// Package vow собирает HTTP-приложение: маршруты, зависимости и жизненный цикл сервера.
package vow

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-документации.
	_ "github.com/infinitefutureleadersconsultin-star/VOW-sub000/docs"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/access/decision"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/access/feature"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/access/trial"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/activity/create"
	alignmentread "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/alignment/read"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/auth/login"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/auth/register"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/billing/events"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/health"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/insights/usage"
	prefread "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/preferences/read"
	prefupdate "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/preferences/update"
	streakread "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/streak/read"
	streakrecover "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/streak/recovery"
	tierslist "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/tiers/list"
	vowcomplete "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/vows/complete"
	vowcreate "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/vows/create"
	vowlist "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/handlers/vows/list"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/middlewarectx"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
)

// AuthService — регистрация, вход и проверка токенов.
type AuthService interface {
	register.Service
	login.Service
	middlewarectx.Service
}

// ProgressService — доступ, серия и показатель соответствия.
type ProgressService interface {
	decision.Service
	trial.Service
	feature.Service
	streakread.Service
	streakrecover.Service
	alignmentread.Service
	middlewarectx.AccessChecker
}

// VowService — обеты и записи активности.
type VowService interface {
	vowcreate.Service
	vowlist.Service
	vowcomplete.Service
	create.Service
}

// PreferenceService — пользовательские настройки.
type PreferenceService interface {
	prefread.Service
	prefupdate.Service
}

// Services — сервисы, которые обслуживают маршруты.
type Services struct {
	Auth        AuthService
	Progress    ProgressService
	Vows        VowService
	Usage       usage.Service
	Preferences PreferenceService
	Billing     events.Service
	Health      health.Checker
}

// RateLimit — общее ограничение частоты запросов ко всему API.
type RateLimit struct {
	RPS   float64
	Burst int
}

// RegisterRoutes регистрирует все маршруты приложения.
// Запросы биллинга подписываются ключом billingSecret.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, limit RateLimit, billingSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, limit.RPS, limit.Burst))

		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/tiers", tierslist.New(logger).ServeHTTP)
		r.Post("/billing/events", events.New(logger, svc.Billing, billingSecret).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))

			r.Get("/access", decision.New(logger, svc.Progress).ServeHTTP)
			r.Get("/access/trial", trial.New(logger, svc.Progress).ServeHTTP)
			r.Get("/features/{feature}", feature.New(logger, svc.Progress).ServeHTTP)
			r.Get("/streak", streakread.New(logger, svc.Progress).ServeHTTP)
			r.Post("/streak/recover", streakrecover.New(logger, svc.Progress).ServeHTTP)
			r.Get("/alignment", alignmentread.New(logger, svc.Progress).ServeHTTP)

			// Требуется действующий доступ
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AccessMiddleware(logger, svc.Progress))

				r.Post("/vows", vowcreate.New(logger, svc.Vows).ServeHTTP)
				r.Get("/vows", vowlist.New(logger, svc.Vows).ServeHTTP)
				r.Post("/vows/{id}/complete", vowcomplete.New(logger, svc.Vows).ServeHTTP)
				r.Post("/reflections", create.New(logger, svc.Vows, models.CategoryReflection).ServeHTTP)
				r.Post("/triggers", create.New(logger, svc.Vows, models.CategoryTrigger).ServeHTTP)
				r.Post("/insights/usage", usage.New(logger, svc.Usage).ServeHTTP)
				r.Get("/preferences/{key}", prefread.New(logger, svc.Preferences).ServeHTTP)
				r.Put("/preferences/{key}", prefupdate.New(logger, svc.Preferences).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, svc.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
