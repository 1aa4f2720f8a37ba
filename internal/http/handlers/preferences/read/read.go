// Package read реализует HTTP-обработчик чтения настройки пользователя.
package read

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
	preferences "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/preferences"
)

// Service читает настройки.
type Service interface {
	Get(ctx context.Context, uid, key string) (string, error)
}

// Handler возвращает значение настройки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить настройку
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Param key path string true "theme, notifications, reminder_time или timezone"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Неизвестная настройка"
// @Failure 500 {object} response.ErrorResponse
// @Router /preferences/{key} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.preferences.read"
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

	key := chi.URLParam(r, "key")
	v, err := h.service.Get(r.Context(), uid, key)
	switch {
	case errors.Is(err, preferences.ErrUnknownKey):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown preference"))
		return
	case err != nil:
		log.Error("failed to read preference", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read preference"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]string{
		"key":   key,
		"value": v,
	}))
}
