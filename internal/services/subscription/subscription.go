// Package subscription содержит бизнес-логику управления записью подписки
// владельца площадок: создание при принятии условий сервиса, отмена,
// реактивация с погашением долга и ручные правки администратора.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/venue-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/venue-billing/internal/lib/sl"
	"github.com/magabrotheeeer/venue-billing/internal/models"
	"github.com/magabrotheeeer/venue-billing/internal/storage/repository"
)

// ErrAlreadySubscribed возвращается при повторном принятии условий сервиса.
var ErrAlreadySubscribed = errors.New("owner already has a subscription")

// ErrNotCancelled возвращается при попытке реактивировать неотменённую подписку.
var ErrNotCancelled = errors.New("subscription is not cancelled")

// Repository определяет методы хранилища для управления подписками и платежами.
type Repository interface {
	GetLatestSubscriptionByOwner(ctx context.Context, ownerUID string) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	SetSubscriptionStatus(ctx context.Context, id int, status models.SubscriptionStatus) (int64, error)
	ReactivateSubscription(ctx context.Context, id int, startDate, endDate time.Time) (int64, error)
	UpdateSubscription(ctx context.Context, id int, fields map[string]any) (int64, error)
	CreatePayment(ctx context.Context, p models.Payment) (int, error)
	ListPaymentsByPayer(ctx context.Context, payerUID string) ([]*models.Payment, error)
}

// Cache описывает методы для кэширования снимка подписки.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// DebtCalculator считает реактивационный долг отменённой подписки.
type DebtCalculator interface {
	ReactivationDebt(ctx context.Context, sub *models.Subscription, now time.Time) (int, error)
}

// EventPublisher публикует интеграционные события жизненного цикла.
type EventPublisher interface {
	Publish(routingKey string, event rabbitmq.LifecycleEvent) error
}

// Service реализует операции над записью подписки владельца.
type Service struct {
	repo     Repository
	cache    Cache
	debts    DebtCalculator
	events   EventPublisher
	log      *slog.Logger
	defaults Defaults
}

// Defaults параметры новой пробной подписки.
type Defaults struct {
	MaxVenues         int
	MaxCourtsPerVenue int
	PremiumPrice      int
}

// New создает новый Service.
func New(repo Repository, cache Cache, debts DebtCalculator, events EventPublisher,
	log *slog.Logger, defaults Defaults) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		debts:    debts,
		events:   events,
		log:      log,
		defaults: defaults,
	}
}

// ReactivationResult итог реактивации: погашаемый долг и ID записи.
type ReactivationResult struct {
	SubscriptionID int `json:"subscription_id"`
	Debt           int `json:"debt"`
}

// AcceptTerms создаёт пробную подписку владельца: бесплатный план,
// статус active, дата старта — сегодня. Повторное принятие условий
// при живой записи — ошибка, а не вторая запись.
func (s *Service) AcceptTerms(ctx context.Context, ownerUID string, now time.Time) (int, error) {
	const op = "subscription.AcceptTerms"

	existing, err := s.repo.GetLatestSubscriptionByOwner(ctx, ownerUID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return 0, fmt.Errorf("%s: %w", op, ErrAlreadySubscribed)
	}

	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	id, err := s.repo.CreateSubscription(ctx, models.Subscription{
		OwnerUID:          ownerUID,
		PlanType:          models.PlanFree,
		Status:            models.StatusActive,
		StartDate:         startDate,
		MaxVenues:         s.defaults.MaxVenues,
		MaxCourtsPerVenue: s.defaults.MaxCourtsPerVenue,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created trial subscription",
		slog.String("owner_uid", ownerUID), slog.Int("id", id))
	s.invalidateSnapshot(ownerUID)
	return id, nil
}

// Cancel отменяет действующую подписку владельца.
func (s *Service) Cancel(ctx context.Context, ownerUID string) error {
	const op = "subscription.Cancel"

	sub, err := s.repo.GetLatestSubscriptionByOwner(ctx, ownerUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.SetSubscriptionStatus(ctx, sub.ID, models.StatusCancelled); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription cancelled",
		slog.String("owner_uid", ownerUID), slog.Int("id", sub.ID))
	s.invalidateSnapshot(ownerUID)

	event := rabbitmq.LifecycleEvent{
		OwnerUID:       ownerUID,
		SubscriptionID: sub.ID,
		PlanType:       string(sub.PlanType),
		Status:         string(models.StatusCancelled),
		OccurredAt:     time.Now(),
	}
	if pubErr := s.events.Publish(rabbitmq.RoutingKeyCancelled, event); pubErr != nil {
		s.log.Warn("failed to publish cancellation event", sl.Err(pubErr))
	}
	return nil
}

// Reactivate возвращает отменённую подписку в действие: считает долг
// по последнему неоплаченному циклу, переводит запись на премиум со
// свежими датами и возвращает сумму к оплате. Новый цикл якорится
// на дате реактивации.
func (s *Service) Reactivate(ctx context.Context, ownerUID string, now time.Time) (*ReactivationResult, error) {
	const op = "subscription.Reactivate"

	sub, err := s.repo.GetLatestSubscriptionByOwner(ctx, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.Status != models.StatusCancelled {
		return nil, fmt.Errorf("%s: %w", op, ErrNotCancelled)
	}

	debt, err := s.debts.ReactivationDebt(ctx, sub, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endDate := startDate.AddDate(0, 1, 0)
	if _, err := s.repo.ReactivateSubscription(ctx, sub.ID, startDate, endDate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription reactivated",
		slog.String("owner_uid", ownerUID), slog.Int("id", sub.ID), slog.Int("debt", debt))
	s.invalidateSnapshot(ownerUID)

	event := rabbitmq.LifecycleEvent{
		OwnerUID:       ownerUID,
		SubscriptionID: sub.ID,
		PlanType:       string(models.PlanPremium),
		Status:         string(models.StatusActive),
		DebtAmount:     debt,
		OccurredAt:     time.Now(),
	}
	if pubErr := s.events.Publish(rabbitmq.RoutingKeyReactivated, event); pubErr != nil {
		s.log.Warn("failed to publish reactivation event", sl.Err(pubErr))
	}

	return &ReactivationResult{SubscriptionID: sub.ID, Debt: debt}, nil
}

// PreviewDebt возвращает реактивационный долг без изменения записи.
func (s *Service) PreviewDebt(ctx context.Context, ownerUID string, now time.Time) (int, error) {
	const op = "subscription.PreviewDebt"

	sub, err := s.repo.GetLatestSubscriptionByOwner(ctx, ownerUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if sub.Status != models.StatusCancelled {
		return 0, fmt.Errorf("%s: %w", op, ErrNotCancelled)
	}
	debt, err := s.debts.ReactivationDebt(ctx, sub, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return debt, nil
}

// AdminUpdate применяет частичную правку записи подписки администратором.
// Локальный кеш сбрасывается только после успешной записи.
func (s *Service) AdminUpdate(ctx context.Context, id int, req models.DummySubscriptionUpdate) (int64, error) {
	const op = "subscription.AdminUpdate"

	fields := make(map[string]any)
	if req.PlanType != nil {
		fields["plan_type"] = *req.PlanType
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid start date: %w", op, err)
		}
		fields["start_date"] = startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid end date: %w", op, err)
		}
		fields["end_date"] = endDate
	}
	if req.PricePerMonth != nil {
		fields["price_per_month"] = *req.PricePerMonth
	}

	rowsAffected, err := s.repo.UpdateSubscription(ctx, id, fields)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription updated by admin",
		slog.Int("id", id), slog.Int64("rows", rowsAffected))
	return rowsAffected, nil
}

// RecordPayment записывает платёж, внесённый оператором вручную.
func (s *Service) RecordPayment(ctx context.Context, req models.DummyPayment) (int, error) {
	const op = "subscription.RecordPayment"

	id, err := s.repo.CreatePayment(ctx, models.Payment{
		PaymentType:    req.PaymentType,
		SubscriptionID: req.SubscriptionID,
		PayerUID:       req.PayerUID,
		Amount:         req.Amount,
		Currency:       "RUB",
		Method:         req.Method,
		Status:         "succeeded",
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment recorded", slog.Int("id", id), slog.Int("amount", req.Amount))
	return id, nil
}

// ListPayments возвращает платежи владельца.
func (s *Service) ListPayments(ctx context.Context, payerUID string) ([]*models.Payment, error) {
	return s.repo.ListPaymentsByPayer(ctx, payerUID)
}

func (s *Service) invalidateSnapshot(ownerUID string) {
	cacheKey := fmt.Sprintf("subscription:owner:%s", ownerUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate subscription cache",
			slog.String("key", cacheKey), sl.Err(err))
	}
}
