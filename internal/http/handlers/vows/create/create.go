// Package create реализует HTTP-обработчик создания обета.
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
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/vow"
	vows "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/vows"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

// Request — входные данные для создания обета.
type Request struct {
	Identity string `json:"identity" validate:"required,max=200"`
	Boundary string `json:"boundary" validate:"required,max=200"`
	Duration int    `json:"duration" validate:"required,min=1,max=365"`
}

// Service создает обеты.
type Service interface {
	Create(ctx context.Context, uid, identity, boundary string, duration int) (*vow.Vow, error)
}

// Handler обрабатывает создание обета.
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
// @Summary Создать обет
// @Tags Vows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Обет"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Лимит обетов тарифа"
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /vows [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.vows.create"
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
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	v, err := h.service.Create(r.Context(), uid, req.Identity, req.Boundary, req.Duration)
	switch {
	case errors.Is(err, vows.ErrVowLimit):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("active vow limit reached for your tier"))
		return
	case errors.Is(err, vow.ErrInvalidDuration):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(vow.ErrInvalidDuration.Error()))
		return
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to create vow", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create vow"))
		return
	}

	log.Info("vow created", slog.String("vow_id", v.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(v))
}
