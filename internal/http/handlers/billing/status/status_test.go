package status

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/venue-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/venue-billing/internal/models"
	"github.com/magabrotheeeer/venue-billing/internal/services/billing"
	"github.com/magabrotheeeer/venue-billing/internal/services/lifecycle"
)

// MockResolver реализует интерфейс status.Resolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, ownerUID string, now time.Time) (*lifecycle.Resolution, error) {
	args := m.Called(ctx, ownerUID, now)
	res, _ := args.Get(0).(*lifecycle.Resolution)
	return res, args.Error(1)
}

// MockBiller реализует интерфейс status.Biller
type MockBiller struct {
	mock.Mock
}

func (m *MockBiller) CurrentCycleSummary(ctx context.Context, sub *models.Subscription, now time.Time) (*billing.CycleSummary, error) {
	args := m.Called(ctx, sub, now)
	summary, _ := args.Get(0).(*billing.CycleSummary)
	return summary, args.Error(1)
}

func TestStatusHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	sub := &models.Subscription{ID: 1, OwnerUID: "owner-1", PlanType: models.PlanFree}

	tests := []struct {
		name           string
		ownerUID       string
		setupMocks     func(*MockResolver, *MockBiller)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "пробный период со сводкой цикла",
			ownerUID: "owner-1",
			setupMocks: func(r *MockResolver, b *MockBiller) {
				r.On("Resolve", mock.Anything, "owner-1", mock.Anything).
					Return(&lifecycle.Resolution{
						State:         models.StateInTrial,
						TrialDaysLeft: 16,
						Subscription:  sub,
					}, nil)
				b.On("CurrentCycleSummary", mock.Anything, sub, mock.Anything).
					Return(&billing.CycleSummary{
						CycleStart:        "2025-06-10",
						CycleEnd:          "2025-07-10",
						Commission:        15000,
						CompletedBookings: 3,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"trial_days_left":16`,
		},
		{
			name:     "подписки нет",
			ownerUID: "owner-2",
			setupMocks: func(r *MockResolver, _ *MockBiller) {
				r.On("Resolve", mock.Anything, "owner-2", mock.Anything).
					Return(&lifecycle.Resolution{State: models.StateNoSubscription}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"state":"no_subscription"`,
		},
		{
			name:     "резолюция уже выполняется",
			ownerUID: "owner-3",
			setupMocks: func(r *MockResolver, _ *MockBiller) {
				r.On("Resolve", mock.Anything, "owner-3", mock.Anything).
					Return(nil, lifecycle.ErrResolutionInFlight)
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `resolution already in progress`,
		},
		{
			name:     "ошибка резолвера",
			ownerUID: "owner-4",
			setupMocks: func(r *MockResolver, _ *MockBiller) {
				r.On("Resolve", mock.Anything, "owner-4", mock.Anything).
					Return(nil, errors.New("storage unreachable"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `could not resolve billing status`,
		},
		{
			name:           "нет owner_uid в контексте",
			ownerUID:       "",
			setupMocks:     func(_ *MockResolver, _ *MockBiller) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
		{
			name:     "ошибка расчёта сводки",
			ownerUID: "owner-5",
			setupMocks: func(r *MockResolver, b *MockBiller) {
				r.On("Resolve", mock.Anything, "owner-5", mock.Anything).
					Return(&lifecycle.Resolution{
						State:        models.StateActivePaid,
						Subscription: sub,
					}, nil)
				b.On("CurrentCycleSummary", mock.Anything, sub, mock.Anything).
					Return(nil, errors.New("bookings unavailable"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not compute cycle summary`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolverMock := new(MockResolver)
			billerMock := new(MockBiller)
			tt.setupMocks(resolverMock, billerMock)

			handler := New(logger, resolverMock, billerMock)

			req := httptest.NewRequest(http.MethodGet, "/billing/status", nil)
			if tt.ownerUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.OwnerUID, tt.ownerUID)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			resolverMock.AssertExpectations(t)
			billerMock.AssertExpectations(t)
		})
	}
}
