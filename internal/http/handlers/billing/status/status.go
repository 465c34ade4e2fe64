// Package status реализует HTTP-обработчик статуса биллинга владельца.
//
// Handler резолвит состояние жизненного цикла подписки (пробный период,
// платный план, блокировка) и считает комиссию текущего биллингового
// цикла. Ответ содержит состояние, остаток пробных дней и сводку цикла.
package status

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
	"github.com/magabrotheeeer/venue-billing/internal/models"
	"github.com/magabrotheeeer/venue-billing/internal/services/billing"
	"github.com/magabrotheeeer/venue-billing/internal/services/lifecycle"
)

// Handler обрабатывает запросы на получение статуса биллинга владельца.
type Handler struct {
	log      *slog.Logger // Логгер для записи информации и ошибок
	resolver Resolver     // Резолвер состояния жизненного цикла
	billing  Biller       // Сервис расчёта комиссии цикла
}

// Resolver описывает интерфейс резолюции состояния подписки.
type Resolver interface {
	Resolve(ctx context.Context, ownerUID string, now time.Time) (*lifecycle.Resolution, error)
}

// Biller описывает интерфейс расчёта сводки текущего цикла.
type Biller interface {
	CurrentCycleSummary(ctx context.Context, sub *models.Subscription, now time.Time) (*billing.CycleSummary, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, resolver Resolver, biller Biller) *Handler {
	return &Handler{
		log:      log,
		resolver: resolver,
		billing:  biller,
	}
}

// ServeHTTP godoc
// @Summary Статус биллинга владельца
// @Description Возвращает состояние подписки, остаток пробных дней и комиссию текущего биллингового цикла.
// @Tags Billing
// @Produce  json
// @Success 200 {object} map[string]any "Состояние и сводка цикла"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 429 {object} response.ErrorResponse "Резолюция уже выполняется"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Failure 503 {object} response.ErrorResponse "Статус временно недоступен"
// @Security BearerAuth
// @Router /billing/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.status"

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

	now := time.Now()

	res, err := h.resolver.Resolve(r.Context(), ownerUID, now)
	if err != nil {
		if errors.Is(err, lifecycle.ErrResolutionInFlight) {
			log.Info("resolution already in flight", slog.String("owner_uid", ownerUID))
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.Error("resolution already in progress, retry later"))
			return
		}
		log.Error("failed to resolve subscription state", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("could not resolve billing status, retry later"))
		return
	}

	data := map[string]any{
		"state":           res.State,
		"trial_days_left": res.TrialDaysLeft,
	}

	if res.Subscription != nil {
		summary, err := h.billing.CurrentCycleSummary(r.Context(), res.Subscription, now)
		if err != nil {
			log.Error("failed to compute cycle summary", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not compute cycle summary"))
			return
		}
		data["cycle"] = summary
	}

	log.Info("billing status resolved",
		slog.String("owner_uid", ownerUID), slog.Any("state", res.State))
	render.JSON(w, r, response.StatusOKWithData(data))
}
