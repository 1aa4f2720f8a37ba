// Package events реализует HTTP-приём событий статуса подписки от биллинга.
package events

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/response"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
	billing "github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/services/billing"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/storage"
)

// Request — событие смены статуса подписки.
type Request struct {
	UserUID string  `json:"user_uid" validate:"required,uuid"`
	Status  string  `json:"status" validate:"required,max=32"`
	Tier    *string `json:"tier,omitempty" validate:"omitempty,oneof=trial initiation reflection liberation"`
}

// Service применяет событие биллинга.
type Service interface {
	Apply(ctx context.Context, ev models.BillingEvent) error
}

// SignatureHeader — заголовок с подписью тела запроса.
const SignatureHeader = "X-Api-Signature"

// Handler принимает события биллинга.
type Handler struct {
	log      *slog.Logger
	service  Service
	secret   string
	validate *validator.Validate
}

// New создает новый Handler. Запросы без корректной подписи secret отклоняются.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		secret:   secret,
		validate: validator.New(),
	}
}

// Sign возвращает base64(HMAC-SHA256(body)) с ключом secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (h *Handler) verifySignature(body []byte, signature string) bool {
	if h.secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(h.secret, body)), []byte(signature))
}

// ServeHTTP godoc
// @Summary Событие биллинга
// @Description Сохраняет статус подписки и тариф. Неизвестный статус сохраняется и закрывает доступ.
// @Tags Billing
// @Accept json
// @Produce json
// @Param X-Api-Signature header string true "base64(HMAC-SHA256(body))"
// @Param request body Request true "Событие"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /billing/events [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.events"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	defer r.Body.Close()

	if !h.verifySignature(body, r.Header.Get(SignatureHeader)) {
		log.Warn("invalid or missing billing signature")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
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

	err = h.service.Apply(r.Context(), models.BillingEvent{
		UserUID: req.UserUID,
		Status:  req.Status,
		Tier:    req.Tier,
	})
	switch {
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, billing.ErrInvalidEvent):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(billing.ErrInvalidEvent.Error()))
		return
	case err != nil:
		log.Error("failed to apply billing event", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not apply billing event"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]string{
		"user_uid": req.UserUID,
		"status":   req.Status,
	}))
}
