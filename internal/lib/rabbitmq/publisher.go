// Package rabbitmq содержит публикацию интеграционных событий жизненного
// цикла подписки в RabbitMQ. События потребляют внешние сервисы
// (уведомления, аналитика), само ядро их не слушает.
package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// LifecycleExchange имя exchange для событий жизненного цикла подписки.
const LifecycleExchange = "subscription.lifecycle"

const (
	// RoutingKeyUpgraded событие автоматического перевода на премиум-план.
	RoutingKeyUpgraded = "upgraded"
	// RoutingKeyCancelled событие отмены подписки владельцем.
	RoutingKeyCancelled = "cancelled"
	// RoutingKeyReactivated событие реактивации отменённой подписки.
	RoutingKeyReactivated = "reactivated"
)

// LifecycleEvent тело интеграционного события.
type LifecycleEvent struct {
	OwnerUID       string    `json:"owner_uid"`
	SubscriptionID int       `json:"subscription_id"`
	PlanType       string    `json:"plan_type"`
	Status         string    `json:"status"`
	DebtAmount     int       `json:"debt_amount,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetupLifecycleExchange объявляет exchange событий жизненного цикла.
// Очереди к нему привязывают сервисы-потребители.
func SetupLifecycleExchange(ch *amqp.Channel) error {
	const op = "rabbitmq.SetupLifecycleExchange"
	if err := ch.ExchangeDeclare(
		LifecycleExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
