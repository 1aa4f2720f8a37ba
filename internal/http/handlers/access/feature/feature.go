// Package feature реализует HTTP-обработчик проверки доступа к функции тарифа.
package feature

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/middlewarectx"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/response"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	progress "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/progress"
)

// Service проверяет доступ к функции.
type Service interface {
	Feature(ctx context.Context, uid, name string) (progress.FeatureReport, error)
}

// Handler возвращает доступность функции для пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Доступ к функции
// @Tags Access
// @Produce json
// @Security BearerAuth
// @Param feature path string true "Код функции, например ai_insights"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Неизвестная функция"
// @Failure 500 {object} response.ErrorResponse
// @Router /features/{feature} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.feature"
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

	name := chi.URLParam(r, "feature")
	rep, err := h.service.Feature(r.Context(), uid, name)
	if err != nil {
		if errors.Is(err, progress.ErrUnknownFeature) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("unknown feature"))
			return
		}
		log.Error("failed to check feature", slog.String("feature", name), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check feature"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(rep))
}
