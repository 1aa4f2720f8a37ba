// Package create реализует HTTP-обработчики записи рефлексий и триггеров.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/middlewarectx"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/response"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
	vows "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/vows"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

// Request — запись активности, опционально привязанная к обету.
type Request struct {
	VowID *string `json:"vow_id,omitempty" validate:"omitempty,uuid"`
	Note  string  `json:"note" validate:"required,max=2000"`
}

// Service записывает рефлексии и триггеры.
type Service interface {
	AddReflection(ctx context.Context, uid string, vowID *string, note string) (*models.Activity, error)
	AddTrigger(ctx context.Context, uid string, vowID *string, note string) (*models.Activity, error)
}

// Handler обрабатывает запись активности одной категории.
type Handler struct {
	log      *slog.Logger
	service  Service
	category models.Category
	validate *validator.Validate
}

// New создает новый Handler для категории category.
func New(log *slog.Logger, service Service, category models.Category) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		category: category,
		validate: validator.New(),
	}
}

func (h *Handler) add(ctx context.Context, uid string, req Request) (*models.Activity, error) {
	if h.category == models.CategoryTrigger {
		return h.service.AddTrigger(ctx, uid, req.VowID, req.Note)
	}
	return h.service.AddReflection(ctx, uid, req.VowID, req.Note)
}

// ServeHTTP godoc
// @Summary Записать рефлексию или триггер
// @Tags Activity
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Запись"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Функция недоступна на тарифе"
// @Failure 404 {object} response.ErrorResponse "Обет не найден"
// @Failure 422 {object} response.ErrorResponse
// @Router /reflections [post]
// @Router /triggers [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.activity.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("category", string(h.category)),
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
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	a, err := h.add(r.Context(), uid, req)
	switch {
	case errors.Is(err, vows.ErrFeatureLocked):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error(vows.ErrFeatureLocked.Error()))
		return
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("vow not found"))
		return
	case err != nil:
		log.Error("failed to save activity", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save activity"))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(a))
}
