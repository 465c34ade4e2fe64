// Package lifecycle реализует резолвер состояния жизненного цикла
// подписки владельца: пробный период, действующий платный план,
// блокировка по истечении и ожидание реактивации после отмены.
// Решение о состоянии отделено от побочного эффекта автоперевода
// на платный план: Decide — чистая функция, Resolver выполняет
// side effect и работает с хранилищем и кешем.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/venue-billing/internal/config"
	"github.com/magabrotheeeer/venue-billing/internal/lib/billing"
	"github.com/magabrotheeeer/venue-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/venue-billing/internal/lib/sl"
	"github.com/magabrotheeeer/venue-billing/internal/models"
	"github.com/magabrotheeeer/venue-billing/internal/storage/repository"
)

// ErrResolutionInFlight возвращается, когда для владельца уже идёт
// резолюция: конкурентный вызов не встаёт в очередь, а сразу выходит.
var ErrResolutionInFlight = errors.New("resolution already in flight")

// SubscriptionRepository определяет методы хранилища, нужные резолверу.
type SubscriptionRepository interface {
	// GetLatestSubscriptionByOwner возвращает авторитетную запись подписки владельца.
	GetLatestSubscriptionByOwner(ctx context.Context, ownerUID string) (*models.Subscription, error)
	// UpgradeToPremium идемпотентно переводит бесплатную подписку на премиум.
	UpgradeToPremium(ctx context.Context, id, pricePerMonth int) (int64, error)
}

// Cache описывает методы для кэширования снимка подписки.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// EventPublisher публикует интеграционные события жизненного цикла.
type EventPublisher interface {
	Publish(routingKey string, event rabbitmq.LifecycleEvent) error
}

// Decision результат чистой функции перехода: состояние, остаток
// пробных дней и флаг необходимости автоперевода на платный план.
type Decision struct {
	State         models.LifecycleState
	TrialDaysLeft int
	NeedsUpgrade  bool
}

// Decide вычисляет состояние жизненного цикла по снимку подписки
// и моменту now. Правила проверяются по порядку, срабатывает первое:
//
//  1. записи нет — no_subscription;
//  2. статус cancelled — cancelled_pending_reactivation;
//  3. статус expired, либо платный план с end_date в прошлом — expired_blocked;
//  4. бесплатный план: до конца пробного периода in_trial,
//     после — active_paid с флагом автоперевода;
//  5. иначе active_paid.
//
// Функция не имеет побочных эффектов, автоперевод выполняет Resolver.
func Decide(sub *models.Subscription, now time.Time, trialDays int) Decision {
	if sub == nil {
		return Decision{State: models.StateNoSubscription}
	}
	if sub.Status == models.StatusCancelled {
		return Decision{State: models.StateCancelledPendingReactivation}
	}
	if sub.Status == models.StatusExpired ||
		(sub.PlanType != models.PlanFree && sub.EndDate != nil && sub.EndDate.Before(now)) {
		return Decision{State: models.StateExpiredBlocked}
	}
	if sub.PlanType == models.PlanFree {
		trialEnd := billing.TrialEnd(sub.StartDate, trialDays)
		if now.Before(trialEnd) {
			return Decision{
				State:         models.StateInTrial,
				TrialDaysLeft: billing.TrialDaysLeft(trialEnd, now),
			}
		}
		return Decision{State: models.StateActivePaid, NeedsUpgrade: true}
	}
	return Decision{State: models.StateActivePaid}
}

// Resolution итог резолюции для вызывающей стороны.
type Resolution struct {
	State         models.LifecycleState `json:"state"`
	TrialDaysLeft int                   `json:"trial_days_left"`
	Subscription  *models.Subscription  `json:"-"`
}

// Resolver загружает подписку владельца, вычисляет состояние и при
// необходимости выполняет автоперевод на премиум. На одного владельца
// в каждый момент допускается не более одной резолюции.
type Resolver struct {
	repo   SubscriptionRepository
	cache  Cache
	events EventPublisher
	log    *slog.Logger
	cfg    config.Billing

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewResolver создает новый Resolver.
func NewResolver(repo SubscriptionRepository, cache Cache, events EventPublisher,
	log *slog.Logger, cfg config.Billing) *Resolver {
	return &Resolver{
		repo:     repo,
		cache:    cache,
		events:   events,
		log:      log,
		cfg:      cfg,
		inflight: make(map[string]struct{}),
	}
}

// Resolve возвращает состояние жизненного цикла владельца на момент now.
//
// Чтение подписки ограничено таймаутом; по таймауту или сбою сети
// используется кешированный снимок, а при его отсутствии возвращается
// ошибка — сбой чтения никогда не трактуется как отсутствие подписки.
func (r *Resolver) Resolve(ctx context.Context, ownerUID string, now time.Time) (*Resolution, error) {
	const op = "lifecycle.Resolve"

	if !r.acquire(ownerUID) {
		return nil, fmt.Errorf("%s: %w", op, ErrResolutionInFlight)
	}
	defer r.release(ownerUID)

	sub, err := r.loadSubscription(ctx, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	d := Decide(sub, now, r.cfg.TrialDays)
	if d.NeedsUpgrade {
		r.autoUpgrade(ctx, ownerUID, sub)
	}

	return &Resolution{
		State:         d.State,
		TrialDaysLeft: d.TrialDaysLeft,
		Subscription:  sub,
	}, nil
}

func (r *Resolver) acquire(ownerUID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[ownerUID]; busy {
		return false
	}
	r.inflight[ownerUID] = struct{}{}
	return true
}

func (r *Resolver) release(ownerUID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, ownerUID)
}

// loadSubscription читает авторитетную запись с таймаутом и кеш-фолбэком.
// nil без ошибки означает подтверждённое отсутствие подписки.
func (r *Resolver) loadSubscription(ctx context.Context, ownerUID string) (*models.Subscription, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	cacheKey := fmt.Sprintf("subscription:owner:%s", ownerUID)

	sub, err := r.repo.GetLatestSubscriptionByOwner(fetchCtx, ownerUID)
	if err == nil {
		if cacheErr := r.cache.Set(cacheKey, sub, time.Hour); cacheErr != nil {
			r.log.Warn("failed to cache subscription snapshot",
				slog.String("key", cacheKey), sl.Err(cacheErr))
		}
		return sub, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		// Хранилище ответило: записи действительно нет.
		return nil, nil
	}

	var cached *models.Subscription
	found, cacheErr := r.cache.Get(cacheKey, &cached)
	if cacheErr == nil && found {
		r.log.Warn("subscription fetch failed, using cached snapshot",
			slog.String("owner_uid", ownerUID), sl.Err(err))
		return cached, nil
	}
	return nil, err
}

// autoUpgrade выполняет побочный эффект шага 4: перевод истекшего
// бесплатного плана на премиум. Сбой записи логируется, но резолюция
// продолжает считать аккаунт платным в рамках текущей сессии.
func (r *Resolver) autoUpgrade(ctx context.Context, ownerUID string, sub *models.Subscription) {
	rowsAffected, err := r.repo.UpgradeToPremium(ctx, sub.ID, r.cfg.DefaultPremiumPrice)
	if err != nil {
		autoUpgradeFailures.Inc()
		r.log.Error("failed to persist auto-upgrade",
			slog.Int("subscription_id", sub.ID), sl.Err(err))
	} else if rowsAffected > 0 {
		autoUpgrades.Inc()
		r.log.Info("trial elapsed, subscription auto-upgraded",
			slog.String("owner_uid", ownerUID), slog.Int("subscription_id", sub.ID))

		cacheKey := fmt.Sprintf("subscription:owner:%s", ownerUID)
		if cacheErr := r.cache.Invalidate(cacheKey); cacheErr != nil {
			r.log.Warn("failed to invalidate subscription cache",
				slog.String("key", cacheKey), sl.Err(cacheErr))
		}

		event := rabbitmq.LifecycleEvent{
			OwnerUID:       ownerUID,
			SubscriptionID: sub.ID,
			PlanType:       string(models.PlanPremium),
			Status:         string(models.StatusActive),
			OccurredAt:     time.Now(),
		}
		if pubErr := r.events.Publish(rabbitmq.RoutingKeyUpgraded, event); pubErr != nil {
			r.log.Warn("failed to publish upgrade event", sl.Err(pubErr))
		}
	}

	// Снимок в памяти обновляется в любом случае: UI текущей сессии
	// видит аккаунт платным, даже если запись не сохранилась.
	sub.PlanType = models.PlanPremium
	sub.Status = models.StatusActive
	sub.PricePerMonth = r.cfg.DefaultPremiumPrice
}
