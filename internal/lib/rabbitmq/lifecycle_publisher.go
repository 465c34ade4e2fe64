package rabbitmq

import "github.com/streadway/amqp"

// Publisher публикует события жизненного цикла в выделенный exchange.
// Реализует интерфейс EventPublisher сервисного слоя.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher создаёт публикатора поверх открытого канала AMQP.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// Publish отправляет событие с заданным routing key в exchange жизненного цикла.
func (p *Publisher) Publish(routingKey string, event LifecycleEvent) error {
	return PublishMessage(p.ch, LifecycleExchange, routingKey, event)
}
