package models

import "time"

// Payment представляет запись о платеже, внесённую оператором вручную
// при получении оплаты комиссии или реактивационного долга.
type Payment struct {
	ID             int       `json:"id"`
	PaymentType    string    `json:"payment_type"`
	SubscriptionID int       `json:"subscription_id"`
	PayerUID       string    `json:"payer_uid"`
	Amount         int       `json:"amount"`
	Currency       string    `json:"currency"`
	Method         string    `json:"method"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DummyPayment используется для приёма данных платежа из JSON-запроса
// до валидации и записи в хранилище.
type DummyPayment struct {
	PaymentType    string `json:"payment_type" validate:"required,oneof=commission reactivation_debt manual"`
	SubscriptionID int    `json:"subscription_id" validate:"required,gt=0"`
	PayerUID       string `json:"payer_uid" validate:"required,uuid"`
	Amount         int    `json:"amount" validate:"required,gt=0"`
	Method         string `json:"method" validate:"required,oneof=cash transfer card"`
}
