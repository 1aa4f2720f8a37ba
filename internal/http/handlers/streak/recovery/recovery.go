// Package recovery реализует HTTP-обработчик восстановления серии за XP.
//
// Отказы по правилам возвращаются с результатом в data: 402 при нехватке XP,
// 403 при остальных причинах.
package recovery

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
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/streak"
	progress "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/progress"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

// Service восстанавливает серию.
type Service interface {
	Recover(ctx context.Context, uid string) (streak.RecoveryResult, error)
}

// Handler обрабатывает восстановление серии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Восстановить серию
// @Description Списывает XP и засчитывает пропущенные дни, если прошло не больше 3 дней.
// @Tags Streak
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 402 {object} response.Response "Недостаточно XP"
// @Failure 403 {object} response.Response "Восстановление недоступно"
// @Failure 409 {object} response.ErrorResponse "Нечего восстанавливать или параллельное восстановление"
// @Failure 500 {object} response.ErrorResponse
// @Router /streak/recover [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.streak.recover"
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

	res, err := h.service.Recover(r.Context(), uid)
	switch {
	case errors.Is(err, progress.ErrNothingToRecover):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("no missed days to recover"))
		return
	case errors.Is(err, storage.ErrConflict):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("recovery already in progress"))
		return
	case err != nil:
		log.Error("failed to recover streak", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not recover streak"))
		return
	}

	if !res.Success {
		status := http.StatusForbidden
		if res.Error == streak.ErrRecoveryInsufficientXP {
			status = http.StatusPaymentRequired
		}
		render.Status(r, status)
		render.JSON(w, r, response.ErrorWithData(res.Message, res))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(res))
}
