// Package reactivate реализует HTTP-обработчик реактивации отменённой подписки.
//
// Handler считает долг за завершённые брони текущего цикла, возобновляет
// подписку и возвращает сумму к погашению.
package reactivate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/venue-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/venue-billing/internal/http/response"
	"github.com/magabrotheeeer/venue-billing/internal/lib/sl"
	"github.com/magabrotheeeer/venue-billing/internal/services/subscription"
	"github.com/magabrotheeeer/venue-billing/internal/storage/repository"
)

// Handler обрабатывает запросы на реактивацию подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики реактивации.
type Service interface {
	Reactivate(ctx context.Context, ownerUID string, now time.Time) (*subscription.ReactivationResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Реактивировать подписку
// @Description Возобновляет отменённую подписку текущего владельца и возвращает долг за завершённые брони текущего цикла.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} map[string]any "Подписка возобновлена, долг рассчитан"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 409 {object} response.ErrorResponse "Подписка не в статусе cancelled"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscriptions/reactivate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.reactivate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ownerUID, ok := r.Context().Value(middlewarectx.OwnerUID).(string)
	if !ok || ownerUID == "" {
		log.Error("owner_uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.Reactivate(r.Context(), ownerUID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Info("subscription not found", slog.String("owner_uid", ownerUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
		case errors.Is(err, subscription.ErrNotCancelled):
			log.Info("subscription is not cancelled", slog.String("owner_uid", ownerUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("subscription is not cancelled"))
		default:
			log.Error("failed to reactivate subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not reactivate subscription"))
		}
		return
	}

	log.Info("subscription reactivated",
		slog.String("owner_uid", ownerUID), slog.Int("debt", res.Debt))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription_id": res.SubscriptionID,
		"debt":            res.Debt,
	}))
}
