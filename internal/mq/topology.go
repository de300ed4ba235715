package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeEvents — topic-обменник событий garden.
const ExchangeEvents Exchange = "garden.events"

// QueueStatusHistory — durable-очередь, накапливающая все смены состояний,
// пока их никто не читает.
const QueueStatusHistory Queue = "garden.status_changes"

// RoutingKeyAllStatus — все смены состояний.
const RoutingKeyAllStatus RoutingKey = "*.status"

// StatusRoutingKey возвращает routing key смены состояния сущности.
func StatusRoutingKey(entity domain.EntityKind) RoutingKey {
	return RoutingKey(string(entity) + ".status")
}

// SetupTopology объявляет обменник и очередь истории.
// Используется как SetupFunc при Dial.
func SetupTopology(ch *amqp.Channel) error {
	if err := declareExchange(ch); err != nil {
		return err
	}

	_, err := ch.QueueDeclare(
		string(QueueStatusHistory), // name
		true,                       // durable
		false,                      // delete when unused
		false,                      // exclusive
		false,                      // no-wait
		nil,                        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueStatusHistory, err)
	}

	return bindQueue(ch, QueueStatusHistory, RoutingKeyAllStatus)
}

func declareExchange(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		string(ExchangeEvents), // name
		amqp.ExchangeTopic,     // type
		true,                   // durable
		false,                  // auto-deleted
		false,                  // internal
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
	}
	return nil
}

func bindQueue(ch *amqp.Channel, queue Queue, key RoutingKey) error {
	err := ch.QueueBind(
		string(queue),          // queue name
		string(key),            // routing key
		string(ExchangeEvents), // exchange
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", queue, key, err)
	}
	return nil
}
