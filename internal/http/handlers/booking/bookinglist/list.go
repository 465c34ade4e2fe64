// Package bookinglist реализует HTTP-обработчик списка броней владельца
// за период. Маршрут закрыт проверкой состояния подписки: владельцы
// с заблокированной подпиской к управлению бронями не допускаются.
package bookinglist

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/venue-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/venue-billing/internal/http/response"
	"github.com/magabrotheeeer/venue-billing/internal/lib/sl"
	"github.com/magabrotheeeer/venue-billing/internal/models"
)

// BookingRepository описывает интерфейс чтения броней.
type BookingRepository interface {
	ListBookingsByOwnerInRange(ctx context.Context, ownerUID string, from, to time.Time) ([]models.Booking, error)
}

// Handler обрабатывает запросы на получение списка броней.
type Handler struct {
	log  *slog.Logger
	repo BookingRepository
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, repo BookingRepository) *Handler {
	return &Handler{
		log:  log,
		repo: repo,
	}
}

// ServeHTTP godoc
// @Summary Список броней владельца
// @Description Возвращает брони владельца за период. Параметры from и to в формате 2006-01-02, по умолчанию последние 30 дней.
// @Tags Bookings
// @Produce  json
// @Param from query string false "Начало периода"
// @Param to query string false "Конец периода (исключительно)"
// @Success 200 {object} map[string]any "Список броней"
// @Failure 400 {object} response.ErrorResponse "Некорректный период"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Подписка заблокирована"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /bookings/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.list"
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
	from := now.AddDate(0, 0, -30)
	to := now.AddDate(0, 0, 1)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			log.Error("failed to parse from", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid from date, expected 2006-01-02"))
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			log.Error("failed to parse to", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid to date, expected 2006-01-02"))
			return
		}
		to = parsed
	}

	bookings, err := h.repo.ListBookingsByOwnerInRange(r.Context(), ownerUID, from, to)
	if err != nil {
		log.Error("failed to list bookings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list bookings"))
		return
	}

	log.Info("bookings listed", slog.Int("count", len(bookings)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(bookings),
		"bookings":   bookings,
	}))
}
