// Package venuebilling собирает зависимости биллингового сервиса:
// хранилище, миграции, кеш, подключение к RabbitMQ, сервисный слой
// и HTTP-сервер с роутингом.
package venuebilling

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/venue-billing/internal/cache"
	"github.com/magabrotheeeer/venue-billing/internal/config"
	"github.com/magabrotheeeer/venue-billing/internal/lib/jwt"
	"github.com/magabrotheeeer/venue-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/venue-billing/internal/migrations"
	billingservice "github.com/magabrotheeeer/venue-billing/internal/services/billing"
	"github.com/magabrotheeeer/venue-billing/internal/services/lifecycle"
	subservice "github.com/magabrotheeeer/venue-billing/internal/services/subscription"
	"github.com/magabrotheeeer/venue-billing/internal/storage/repository"
)

// App содержит собранное приложение и его долгоживущие ресурсы.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	rabbit *rabbitmq.Publisher
}

// New собирает приложение из конфигурации: подключает хранилище,
// прогоняет миграции, поднимает кеш и RabbitMQ, связывает сервисы
// и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitURL, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn)
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(rabbitCh)

	tokenMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	resolver := lifecycle.NewResolver(db, cacheRedis, publisher, logger, cfg.Billing)
	billingService := billingservice.New(db, logger,
		cfg.Billing.CommissionRatePerHour, cfg.Billing.TrialDays)
	subscriptionService := subservice.New(db, cacheRedis, billingService, publisher, logger,
		subservice.Defaults{
			MaxVenues:         cfg.Billing.MaxVenues,
			MaxCourtsPerVenue: cfg.Billing.MaxCourtsPerVenue,
			PremiumPrice:      cfg.Billing.DefaultPremiumPrice,
		})

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db, tokenMaker, resolver, billingService, subscriptionService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		rabbit: publisher,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
