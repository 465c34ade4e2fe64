package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/venue-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/venue-billing/internal/models"
	"github.com/magabrotheeeer/venue-billing/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetLatestSubscriptionByOwner(ctx context.Context, ownerUID string) (*models.Subscription, error) {
	args := m.Called(ctx, ownerUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) SetSubscriptionStatus(ctx context.Context, id int, status models.SubscriptionStatus) (int64, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) ReactivateSubscription(ctx context.Context, id int, startDate, endDate time.Time) (int64, error) {
	args := m.Called(ctx, id, startDate, endDate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UpdateSubscription(ctx context.Context, id int, fields map[string]any) (int64, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) CreatePayment(ctx context.Context, p models.Payment) (int, error) {
	args := m.Called(ctx, p)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListPaymentsByPayer(ctx context.Context, payerUID string) ([]*models.Payment, error) {
	args := m.Called(ctx, payerUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

type DebtsMock struct{ mock.Mock }

func (m *DebtsMock) ReactivationDebt(ctx context.Context, sub *models.Subscription, now time.Time) (int, error) {
	args := m.Called(ctx, sub, now)
	return args.Int(0), args.Error(1)
}

type EventsMock struct{ mock.Mock }

func (m *EventsMock) Publish(routingKey string, event rabbitmq.LifecycleEvent) error {
	return m.Called(routingKey, event).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func testDefaults() Defaults {
	return Defaults{MaxVenues: 3, MaxCourtsPerVenue: 10, PremiumPrice: 990000}
}

const ownerUID = "f3b4de2c-1111-4222-8333-444455556666"

func newService(repo *RepoMock, cacheMock *CacheMock, debts *DebtsMock, events *EventsMock) *Service {
	return New(repo, cacheMock, debts, events, newNoopLogger(), testDefaults())
}

func TestAcceptTerms(t *testing.T) {
	repo := new(RepoMock)
	cacheMock := new(CacheMock)
	debts := new(DebtsMock)
	events := new(EventsMock)

	now := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	repo.On("GetLatestSubscriptionByOwner", mock.Anything, ownerUID).
		Return(nil, repository.ErrNotFound).Once()
	repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
		return sub.OwnerUID == ownerUID &&
			sub.PlanType == models.PlanFree &&
			sub.Status == models.StatusActive &&
			sub.StartDate.Equal(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)) &&
			sub.MaxVenues == 3
	})).Return(11, nil).Once()
	cacheMock.On("Invalidate", "subscription:owner:"+ownerUID).Return(nil).Once()

	svc := newService(repo, cacheMock, debts, events)
	id, err := svc.AcceptTerms(context.Background(), ownerUID, now)

	require.NoError(t, err)
	assert.Equal(t, 11, id)
	repo.AssertExpectations(t)
}

func TestAcceptTerms_AlreadySubscribed(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetLatestSubscriptionByOwner", mock.Anything, ownerUID).
		Return(&models.Subscription{ID: 1, OwnerUID: ownerUID}, nil).Once()

	svc := newService(repo, new(CacheMock), new(DebtsMock), new(EventsMock))
	_, err := svc.AcceptTerms(context.Background(), ownerUID, time.Now())

	assert.ErrorIs(t, err, ErrAlreadySubscribed)
}

func TestAcceptTerms_FetchErrorIsNotNewUser(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetLatestSubscriptionByOwner", mock.Anything, ownerUID).
		Return(nil, errors.New("network error")).Once()

	svc := newService(repo, new(CacheMock), new(DebtsMock), new(EventsMock))
	_, err := svc.AcceptTerms(context.Background(), ownerUID, time.Now())

	// Сбой чтения не должен приводить к созданию второй записи.
	require.Error(t, err)
	repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
}

func TestCancel(t *testing.T) {
	repo := new(RepoMock)
	cacheMock := new(CacheMock)
	events := new(EventsMock)

	sub := &models.Subscription{ID: 4, OwnerUID: ownerUID, PlanType: models.PlanPremium, Status: models.StatusActive}
	repo.On("GetLatestSubscriptionByOwner", mock.Anything, ownerUID).Return(sub, nil).Once()
	repo.On("SetSubscriptionStatus", mock.Anything, 4, models.StatusCancelled).Return(int64(1), nil).Once()
	cacheMock.On("Invalidate", mock.Anything).Return(nil).Once()
	events.On("Publish", rabbitmq.RoutingKeyCancelled, mock.Anything).Return(nil).Once()

	svc := newService(repo, cacheMock, new(DebtsMock), events)
	err := svc.Cancel(context.Background(), ownerUID)

	require.NoError(t, err)
	repo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestReactivate(t *testing.T) {
	repo := new(RepoMock)
	cacheMock := new(CacheMock)
	debts := new(DebtsMock)
	events := new(EventsMock)

	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	sub := &models.Subscription{
		ID:        4,
		OwnerUID:  ownerUID,
		PlanType:  models.PlanPremium,
		Status:    models.StatusCancelled,
		StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	wantStart := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)

	repo.On("GetLatestSubscriptionByOwner", mock.Anything, ownerUID).Return(sub, nil).Once()
	debts.On("ReactivationDebt", mock.Anything, sub, now).Return(10000, nil).Once()
	repo.On("ReactivateSubscription", mock.Anything, 4, wantStart, wantEnd).Return(int64(1), nil).Once()
	cacheMock.On("Invalidate", mock.Anything).Return(nil).Once()
	events.On("Publish", rabbitmq.RoutingKeyReactivated, mock.MatchedBy(func(e rabbitmq.LifecycleEvent) bool {
		return e.DebtAmount == 10000 && e.SubscriptionID == 4
	})).Return(nil).Once()

	svc := newService(repo, cacheMock, debts, events)
	res, err := svc.Reactivate(context.Background(), ownerUID, now)

	require.NoError(t, err)
	assert.Equal(t, 10000, res.Debt)
	assert.Equal(t, 4, res.SubscriptionID)
	repo.AssertExpectations(t)
}

func TestReactivate_NotCancelled(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetLatestSubscriptionByOwner", mock.Anything, ownerUID).
		Return(&models.Subscription{ID: 4, Status: models.StatusActive}, nil).Once()

	svc := newService(repo, new(CacheMock), new(DebtsMock), new(EventsMock))
	_, err := svc.Reactivate(context.Background(), ownerUID, time.Now())

	assert.ErrorIs(t, err, ErrNotCancelled)
}

func TestAdminUpdate(t *testing.T) {
	repo := new(RepoMock)

	planType := "premium"
	startDate := "2024-02-01"
	price := 500000
	repo.On("UpdateSubscription", mock.Anything, 7, mock.MatchedBy(func(fields map[string]any) bool {
		wantStart := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
		gotStart, ok := fields["start_date"].(time.Time)
		return fields["plan_type"] == "premium" &&
			fields["price_per_month"] == 500000 &&
			ok && gotStart.Equal(wantStart)
	})).Return(int64(1), nil).Once()

	svc := newService(repo, new(CacheMock), new(DebtsMock), new(EventsMock))
	rows, err := svc.AdminUpdate(context.Background(), 7, models.DummySubscriptionUpdate{
		PlanType:      &planType,
		StartDate:     &startDate,
		PricePerMonth: &price,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestAdminUpdate_WriteFailureSurfaces(t *testing.T) {
	repo := new(RepoMock)
	status := "expired"
	repo.On("UpdateSubscription", mock.Anything, 7, mock.Anything).
		Return(int64(0), errors.New("write conflict")).Once()

	svc := newService(repo, new(CacheMock), new(DebtsMock), new(EventsMock))
	_, err := svc.AdminUpdate(context.Background(), 7, models.DummySubscriptionUpdate{Status: &status})

	assert.Error(t, err)
}

func TestRecordPayment(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return p.PaymentType == "reactivation_debt" &&
			p.Amount == 10000 &&
			p.Status == "succeeded" &&
			p.Currency == "RUB"
	})).Return(21, nil).Once()

	svc := newService(repo, new(CacheMock), new(DebtsMock), new(EventsMock))
	id, err := svc.RecordPayment(context.Background(), models.DummyPayment{
		PaymentType:    "reactivation_debt",
		SubscriptionID: 4,
		PayerUID:       ownerUID,
		Amount:         10000,
		Method:         "transfer",
	})

	require.NoError(t, err)
	assert.Equal(t, 21, id)
}
