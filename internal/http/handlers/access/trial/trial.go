// Package trial реализует HTTP-обработчик сводки по пробному периоду.
package trial

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/middlewarectx"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/response"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
)

// Service возвращает сводку по пробному периоду.
type Service interface {
	Trial(ctx context.Context, uid string) (access.TrialStatus, error)
}

// Handler возвращает сводку по пробному периоду.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Пробный период
// @Tags Access
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /access/trial [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.trial"
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

	st, err := h.service.Trial(r.Context(), uid)
	if err != nil {
		log.Error("failed to load trial status", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load trial status"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(st))
}
