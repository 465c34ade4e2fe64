package termsaccept

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
)

// MockService реализует интерфейс termsaccept.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) AcceptTerms(ctx context.Context, ownerUID string, now time.Time) (int, error) {
	args := m.Called(ctx, ownerUID, now)
	return args.Int(0), args.Error(1)
}

func TestTermsAcceptHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		ownerUID       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное создание пробной подписки",
			ownerUID: "owner-1",
			setupMock: func(m *MockService) {
				m.On("AcceptTerms", mock.Anything, "owner-1", mock.Anything).
					Return(7, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"subscription_id":7`,
		},
		{
			name:     "подписка уже существует",
			ownerUID: "owner-2",
			setupMock: func(m *MockService) {
				m.On("AcceptTerms", mock.Anything, "owner-2", mock.Anything).
					Return(0, subscription.ErrAlreadySubscribed)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `subscription already exists`,
		},
		{
			name:     "ошибка хранилища",
			ownerUID: "owner-3",
			setupMock: func(m *MockService) {
				m.On("AcceptTerms", mock.Anything, "owner-3", mock.Anything).
					Return(0, errors.New("storage unreachable"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not create subscription`,
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

			req := httptest.NewRequest(http.MethodPost, "/subscriptions", nil)
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
