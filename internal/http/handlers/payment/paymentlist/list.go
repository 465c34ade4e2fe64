// Package paymentlist реализует HTTP-обработчик списка платежей владельца.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/venue-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/venue-billing/internal/http/response"
	"github.com/magabrotheeeer/venue-billing/internal/lib/sl"
	"github.com/magabrotheeeer/venue-billing/internal/models"
)

// Service описывает интерфейс получения платежей владельца.
type Service interface {
	ListPayments(ctx context.Context, payerUID string) ([]*models.Payment, error)
}

// Handler обрабатывает запросы на получение списка платежей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список платежей владельца
// @Description Возвращает платежи текущего владельца: комиссии, долги реактивации, ручные платежи.
// @Tags Payments
// @Produce  json
// @Success 200 {object} map[string]any "Список платежей"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /payments/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payerUID, ok := r.Context().Value(middlewarectx.OwnerUID).(string)
	if !ok || payerUID == "" {
		log.Error("owner_uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	payments, err := h.service.ListPayments(r.Context(), payerUID)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list payments"))
		return
	}

	log.Info("payments listed", slog.Int("count", len(payments)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(payments),
		"payments":   payments,
	}))
}
