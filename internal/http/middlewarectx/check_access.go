package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/venue-billing/internal/http/response"
	"github.com/magabrotheeeer/venue-billing/internal/lib/sl"
	"github.com/magabrotheeeer/venue-billing/internal/models"
	"github.com/magabrotheeeer/venue-billing/internal/services/lifecycle"
)

// LifecycleResolver определяет интерфейс резолюции состояния подписки владельца.
type LifecycleResolver interface {
	Resolve(ctx context.Context, ownerUID string, now time.Time) (*lifecycle.Resolution, error)
}

// LifecycleGateMiddleware создает middleware, блокирующий владельцев
// с заблокированной подпиской. Ставится после JWTMiddleware.
func LifecycleGateMiddleware(log *slog.Logger, resolver LifecycleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerUID, ok := r.Context().Value(OwnerUID).(string)
			if !ok || ownerUID == "" {
				log.Error("owner identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("owner identification missing"))
				return
			}

			res, err := resolver.Resolve(r.Context(), ownerUID, time.Now())
			if err != nil {
				if errors.Is(err, lifecycle.ErrResolutionInFlight) {
					render.Status(r, http.StatusTooManyRequests)
					render.JSON(w, r, response.Error("resolution already in progress, retry later"))
					return
				}
				log.Error("failed to resolve subscription state", sl.Err(err))
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.Error("could not resolve subscription state, retry later"))
				return
			}

			if res.State == models.StateExpiredBlocked {
				log.Info("subscription blocked, access denied",
					slog.String("owner_uid", ownerUID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("subscription expired, access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
