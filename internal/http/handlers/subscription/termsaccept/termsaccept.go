// Package termsaccept реализует HTTP-обработчик принятия условий сервиса.
//
// Handler создаёт пробную подписку для текущего владельца: бесплатный план
// со стартом сегодня. Повторное принятие условий при живой записи — ошибка.
package termsaccept

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
)

// Handler обрабатывает запросы на принятие условий и создание пробной подписки.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики подписок
}

// Service описывает интерфейс бизнес-логики создания подписки.
type Service interface {
	AcceptTerms(ctx context.Context, ownerUID string, now time.Time) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Принять условия сервиса
// @Description Создает пробную подписку для текущего владельца. Возвращает ID созданной записи.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} map[string]any "Успешное создание подписки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Подписка уже существует"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.termsaccept"
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

	id, err := h.service.AcceptTerms(r.Context(), ownerUID, time.Now())
	if err != nil {
		if errors.Is(err, subscription.ErrAlreadySubscribed) {
			log.Info("owner already has a subscription", slog.String("owner_uid", ownerUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("subscription already exists"))
			return
		}
		log.Error("failed to create trial subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create subscription"))
		return
	}

	log.Info("trial subscription created",
		slog.String("owner_uid", ownerUID), slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription_id": id,
	}))
}
