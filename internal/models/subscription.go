// Package models содержит доменные структуры биллингового ядра:
// подписку владельца площадки, бронирования, платежи и производные
// состояния жизненного цикла. Все денежные суммы хранятся в минорных
// единицах единственной валюты системы.
package models

import "time"

// PlanType тип тарифного плана подписки владельца.
type PlanType string

const (
	// PlanFree бесплатный пробный план, действует 30 дней с даты старта.
	PlanFree PlanType = "free"
	// PlanPremium основной платный план, комиссия считается по завершённым бронированиям.
	PlanPremium PlanType = "premium"
	// PlanEnterprise расширенный план без лимитов на площадки и корты.
	PlanEnterprise PlanType = "enterprise"
)

// SubscriptionStatus статус подписки в хранилище.
type SubscriptionStatus string

const (
	// StatusActive подписка действует.
	StatusActive SubscriptionStatus = "active"
	// StatusExpired срок подписки истёк, доступ заблокирован.
	StatusExpired SubscriptionStatus = "expired"
	// StatusCancelled подписка отменена владельцем, возможна реактивация.
	StatusCancelled SubscriptionStatus = "cancelled"
	// StatusPendingPayment подписка ожидает подтверждения оплаты.
	StatusPendingPayment SubscriptionStatus = "pending_payment"
)

// Subscription представляет биллинговую запись владельца площадок.
// Авторитетной считается последняя по времени создания запись владельца.
// EndDate может быть nil — явная дата окончания не задана.
type Subscription struct {
	ID                int                // Идентификатор записи
	OwnerUID          string             // UID владельца (uuid)
	PlanType          PlanType           // Тарифный план
	Status            SubscriptionStatus // Статус подписки
	StartDate         time.Time          // Дата начала, якорь биллингового цикла и пробного периода
	EndDate           *time.Time         // Явная дата окончания (опционально)
	CreatedAt         time.Time          // Момент создания записи, якорь ретроспективного расчёта долга
	PricePerMonth     int                // Цена плана в месяц, справочно
	MaxVenues         int                // Лимит площадок по плану
	MaxCourtsPerVenue int                // Лимит кортов на площадку по плану
}

// DummySubscriptionUpdate используется для приёма частичного обновления
// подписки администратором из JSON-запроса. Даты приходят строками
// в формате 2006-01-02, nil-поля не изменяются.
type DummySubscriptionUpdate struct {
	PlanType      *string `json:"plan_type,omitempty" validate:"omitempty,oneof=free premium enterprise"`
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=active expired cancelled pending_payment"`
	StartDate     *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PricePerMonth *int    `json:"price_per_month,omitempty" validate:"omitempty,gte=0"`
}
