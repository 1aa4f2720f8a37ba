package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/response"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
)

// AccessChecker вычисляет решение о доступе для пользователя.
type AccessChecker interface {
	Access(ctx context.Context, uid string) (access.Decision, error)
}

// AccessMiddleware пропускает запрос только при доступе к продукту.
// Отказ возвращается с кодом 403 и причиной в data.reason.
func AccessMiddleware(log *slog.Logger, checker AccessChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AccessMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			uid, ok := UserUIDFrom(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			d, err := checker.Access(r.Context(), uid)
			if err != nil {
				log.Error("failed to evaluate access", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			if !d.HasAccess {
				log.Info("access denied", slog.String("reason", string(d.Reason)))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.ErrorWithData(d.Message, map[string]any{
					"reason": d.Reason,
				}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
