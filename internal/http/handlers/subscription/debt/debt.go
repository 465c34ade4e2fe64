// Package debt реализует HTTP-обработчик предпросмотра долга реактивации.
package debt

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
	"github.com/magabrotheeeer/venue-billing/internal/storage/repository"
)

// Handler обрабатывает запросы на предпросмотр долга без реактивации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс расчёта долга реактивации.
type Service interface {
	PreviewDebt(ctx context.Context, ownerUID string, now time.Time) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Долг реактивации
// @Description Возвращает сумму долга за завершённые брони текущего цикла без изменения подписки.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} map[string]any "Сумма долга"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscriptions/debt [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.debt"
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

	debt, err := h.service.PreviewDebt(r.Context(), ownerUID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("subscription not found", slog.String("owner_uid", ownerUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
			return
		}
		log.Error("failed to compute reactivation debt", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not compute debt"))
		return
	}

	log.Info("reactivation debt computed",
		slog.String("owner_uid", ownerUID), slog.Int("debt", debt))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"debt": debt,
	}))
}
