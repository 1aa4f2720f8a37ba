// Package usage реализует HTTP-обработчик списания использования AI-инсайтов.
package usage

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/middlewarectx"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/response"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
	usageservice "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/usage"
)

// Service списывает использование функции.
type Service interface {
	Consume(ctx context.Context, uid string, f tier.Feature) (usageservice.Usage, error)
}

// Handler списывает одно использование ai_insights.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Использовать AI-инсайт
// @Description Увеличивает дневной счётчик ai_insights и возвращает остаток.
// @Tags Insights
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Функция недоступна на тарифе"
// @Failure 429 {object} response.Response "Дневной лимит исчерпан"
// @Failure 500 {object} response.ErrorResponse
// @Router /insights/usage [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.insights.usage"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := middlewarectx.UserUIDFrom(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	u, err := h.service.Consume(r.Context(), uid, tier.AIInsights)
	switch {
	case errors.Is(err, usageservice.ErrFeatureLocked):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error(usageservice.ErrFeatureLocked.Error()))
		return
	case errors.Is(err, usageservice.ErrLimitExceeded):
		log.Info("daily limit exceeded", slog.Int64("used", u.Used))
		render.Status(r, http.StatusTooManyRequests)
		render.JSON(w, r, response.ErrorWithData(usageservice.ErrLimitExceeded.Error(), u))
		return
	case err != nil:
		log.Error("failed to consume usage", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not record usage"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(u))
}
