// Package read реализует HTTP-обработчик показателя соответствия.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/middlewarectx"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/response"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	progress "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/progress"
)

// Service считает показатель соответствия.
type Service interface {
	Alignment(ctx context.Context, uid string) (progress.AlignmentReport, error)
}

// Handler возвращает показатель соответствия и сообщение.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Показатель соответствия
// @Tags Alignment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /alignment [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.alignment.read"
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

	rep, err := h.service.Alignment(r.Context(), uid)
	if err != nil {
		log.Error("failed to calculate alignment", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not calculate alignment"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(rep))
}
