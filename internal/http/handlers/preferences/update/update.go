// Package update реализует HTTP-обработчик изменения настройки пользователя.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/middlewarectx"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/response"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	preferences "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/preferences"
)

// Request — новое значение настройки.
type Request struct {
	Value string `json:"value" validate:"required,max=64"`
}

// Service сохраняет настройки.
type Service interface {
	Set(ctx context.Context, uid, key, value string) error
}

// Handler обрабатывает изменение настройки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить настройку
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Ключ настройки"
// @Param request body Request true "Значение"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Неизвестная настройка"
// @Failure 422 {object} response.ErrorResponse "Недопустимое значение"
// @Failure 500 {object} response.ErrorResponse
// @Router /preferences/{key} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.preferences.update"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	key := chi.URLParam(r, "key")
	err := h.service.Set(r.Context(), uid, key, req.Value)
	switch {
	case errors.Is(err, preferences.ErrUnknownKey):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown preference"))
		return
	case errors.Is(err, preferences.ErrInvalidValue):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid value for "+key))
		return
	case err != nil:
		log.Error("failed to save preference", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save preference"))
		return
	}

	log.Info("preference updated", slog.String("key", key))
	render.JSON(w, r, response.StatusOKWithData(map[string]string{
		"key":   key,
		"value": req.Value,
	}))
}
