// Package complete реализует HTTP-обработчик отметки дня обета.
package complete

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
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/vow"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

// Service отмечает день обета.
type Service interface {
	CompleteDay(ctx context.Context, uid, vowID string) (*vow.Vow, error)
}

// Handler обрабатывает отметку дня.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отметить день обета
// @Tags Vows
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID обета"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "День уже отмечен или обет неактивен"
// @Failure 500 {object} response.ErrorResponse
// @Router /vows/{id}/complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.vows.complete"
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

	id := chi.URLParam(r, "id")
	if id == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing vow id"))
		return
	}

	v, err := h.service.CompleteDay(r.Context(), uid, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("vow not found"))
		return
	case errors.Is(err, vow.ErrAlreadyCompletedToday):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error(vow.ErrAlreadyCompletedToday.Error()))
		return
	case errors.Is(err, vow.ErrNotActive):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error(vow.ErrNotActive.Error()))
		return
	case err != nil:
		log.Error("failed to complete vow day", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not complete vow day"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(v))
}
