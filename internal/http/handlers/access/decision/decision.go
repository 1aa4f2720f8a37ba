// Package decision реализует HTTP-обработчик текущего решения о доступе.
package decision

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

// Service вычисляет решение о доступе.
type Service interface {
	Access(ctx context.Context, uid string) (access.Decision, error)
}

// Handler возвращает решение о доступе. Отказ не меняет код ответа:
// решение и есть полезная нагрузка.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Решение о доступе
// @Tags Access
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /access [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.decision"
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

	d, err := h.service.Access(r.Context(), uid)
	if err != nil {
		log.Error("failed to evaluate access", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not evaluate access"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(d))
}
