package reactivate

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
	"github.com/magabrotheeeer/venue-billing/internal/services/subscription"
	"github.com/magabrotheeeer/venue-billing/internal/storage/repository"
)

// MockService реализует интерфейс reactivate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Reactivate(ctx context.Context, ownerUID string, now time.Time) (*subscription.ReactivationResult, error) {
	args := m.Called(ctx, ownerUID, now)
	res, _ := args.Get(0).(*subscription.ReactivationResult)
	return res, args.Error(1)
}

func TestReactivateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		ownerUID       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешная реактивация с долгом",
			ownerUID: "owner-1",
			setupMock: func(m *MockService) {
				m.On("Reactivate", mock.Anything, "owner-1", mock.Anything).
					Return(&subscription.ReactivationResult{SubscriptionID: 3, Debt: 10000}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"debt":10000`,
		},
		{
			name:     "реактивация без долга",
			ownerUID: "owner-2",
			setupMock: func(m *MockService) {
				m.On("Reactivate", mock.Anything, "owner-2", mock.Anything).
					Return(&subscription.ReactivationResult{SubscriptionID: 4, Debt: 0}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"debt":0`,
		},
		{
			name:     "подписка не найдена",
			ownerUID: "owner-3",
			setupMock: func(m *MockService) {
				m.On("Reactivate", mock.Anything, "owner-3", mock.Anything).
					Return(nil, repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `subscription not found`,
		},
		{
			name:     "подписка не отменена",
			ownerUID: "owner-4",
			setupMock: func(m *MockService) {
				m.On("Reactivate", mock.Anything, "owner-4", mock.Anything).
					Return(nil, subscription.ErrNotCancelled)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `subscription is not cancelled`,
		},
		{
			name:     "ошибка хранилища",
			ownerUID: "owner-5",
			setupMock: func(m *MockService) {
				m.On("Reactivate", mock.Anything, "owner-5", mock.Anything).
					Return(nil, errors.New("storage unreachable"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not reactivate subscription`,
		},
		{
			name:           "нет owner_uid в контексте",
			ownerUID:       "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(MockService)
			tt.setupMock(serviceMock)

			handler := New(logger, serviceMock)

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/reactivate", nil)
			if tt.ownerUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.OwnerUID, tt.ownerUID)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			serviceMock.AssertExpectations(t)
		})
	}
}
