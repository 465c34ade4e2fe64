// Package venuebilling предоставляет маршруты для основного приложения.
package venuebilling

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/venue-billing/internal/http/handlers/billing/status"
	"github.com/magabrotheeeer/venue-billing/internal/http/handlers/booking/bookinglist"
	"github.com/magabrotheeeer/venue-billing/internal/http/handlers/health"
	"github.com/magabrotheeeer/venue-billing/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/venue-billing/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/venue-billing/internal/http/handlers/subscription/adminupdate"
	"github.com/magabrotheeeer/venue-billing/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/venue-billing/internal/http/handlers/subscription/debt"
	"github.com/magabrotheeeer/venue-billing/internal/http/handlers/subscription/reactivate"
	"github.com/magabrotheeeer/venue-billing/internal/http/handlers/subscription/termsaccept"
	"github.com/magabrotheeeer/venue-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/venue-billing/internal/lib/jwt"
	billingservice "github.com/magabrotheeeer/venue-billing/internal/services/billing"
	"github.com/magabrotheeeer/venue-billing/internal/services/lifecycle"
	subservice "github.com/magabrotheeeer/venue-billing/internal/services/subscription"
	"github.com/magabrotheeeer/venue-billing/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *repository.Storage,
	tokenMaker jwt.Maker, resolver *lifecycle.Resolver,
	billingService *billingservice.Service, subscriptionService *subservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokenMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/billing/status", status.New(logger, resolver, billingService).ServeHTTP)
			r.Post("/subscriptions", termsaccept.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/cancel", cancel.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/reactivate", reactivate.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/debt", debt.New(logger, subscriptionService).ServeHTTP)
			r.Get("/payments/list", paymentlist.New(logger, subscriptionService).ServeHTTP)

			// Управление бронями закрыто для заблокированных подписок
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.LifecycleGateMiddleware(logger, resolver))
				r.Get("/bookings/list", bookinglist.New(logger, db).ServeHTTP)
			})

			// Административные операции
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Put("/admin/subscriptions/{id}", adminupdate.New(logger, subscriptionService).ServeHTTP)
				r.Post("/admin/payments", paymentcreate.New(logger, subscriptionService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
