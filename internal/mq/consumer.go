package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
)

// Handler обрабатывает полученную смену состояния.
// Ошибка возвращает сообщение в очередь.
type Handler func(ctx context.Context, change domain.StatusChange) error

// SubscriberConfig — конфигурация Subscriber.
type SubscriberConfig struct {
	// Queue — очередь для чтения. Пустая — временная эксклюзивная очередь,
	// которая удаляется при отключении.
	Queue Queue

	// RoutingKey — что читать во временную очередь (default: RoutingKeyAllStatus).
	RoutingKey RoutingKey

	// Prefetch — сколько сообщений брать вперёд (default: 10).
	Prefetch int

	// RetryDelay — первая пауза перед повторной подпиской (default: 1s).
	// Удваивается до maxReconnectDelay.
	RetryDelay time.Duration
}

// Subscriber читает события смены состояний.
type Subscriber struct {
	conn   *Connection
	logger *slog.Logger
	cfg    SubscriberConfig
}

// NewSubscriber создаёт Subscriber.
func NewSubscriber(conn *Connection, logger *slog.Logger, cfg SubscriberConfig) *Subscriber {
	if cfg.RoutingKey == "" {
		cfg.RoutingKey = RoutingKeyAllStatus
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 10
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	return &Subscriber{
		conn:   conn,
		logger: logger,
		cfg:    cfg,
	}
}

// Run читает сообщения, пока ctx не отменён.
//
// Подписка восстанавливается после reconnect, а также по таймеру:
// сервер может отменить consumer (очередь удалена, failover)
// или закрыть канал, не разрывая соединение.
func (s *Subscriber) Run(ctx context.Context, handle Handler) error {
	delay := s.cfg.RetryDelay

	for {
		deliveries, err := s.subscribe(ctx)
		if err == nil {
			delay = s.cfg.RetryDelay
			err = s.process(ctx, deliveries, handle)
		}
		if ctx.Err() != nil {
			return nil
		}

		if s.conn.IsConnected() {
			s.logger.Warn("subscription interrupted, resubscribing", "error", err, "retry_in", delay)
		} else {
			s.logger.Warn("subscription interrupted, waiting for reconnect", "error", err, "retry_in", delay)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.conn.ReconnectNotify():
		case <-time.After(delay):
		}
		delay = min(delay*2, maxReconnectDelay)
	}
}

// subscribe объявляет очередь (если нужна временная) и начинает чтение.
func (s *Subscriber) subscribe(ctx context.Context) (<-chan amqp.Delivery, error) {
	var deliveries <-chan amqp.Delivery

	err := s.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := ch.Qos(s.cfg.Prefetch, 0, false); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}

		queue := s.cfg.Queue
		if queue == "" {
			q, err := ch.QueueDeclare(
				"",    // name (server-generated)
				false, // durable
				true,  // delete when unused
				true,  // exclusive
				false, // no-wait
				nil,   // arguments
			)
			if err != nil {
				return fmt.Errorf("declare temporary queue: %w", err)
			}
			queue = Queue(q.Name)

			if err := bindQueue(ch, queue, s.cfg.RoutingKey); err != nil {
				return err
			}
		}

		d, err := ch.ConsumeWithContext(
			ctx,
			string(queue), // queue
			"",            // consumer tag (auto-generated)
			false,         // auto-ack
			false,         // exclusive
			false,         // no-local
			false,         // no-wait
			nil,           // args
		)
		if err != nil {
			return fmt.Errorf("consume %s: %w", queue, err)
		}

		s.logger.Debug("subscribed", "queue", queue, "routing_key", s.cfg.RoutingKey)
		deliveries = d
		return nil
	})
	return deliveries, err
}

func (s *Subscriber) process(ctx context.Context, deliveries <-chan amqp.Delivery, handle Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			s.handleDelivery(ctx, raw, handle)
		}
	}
}

func (s *Subscriber) handleDelivery(ctx context.Context, raw amqp.Delivery, handle Handler) {
	change, err := decodeDelivery(raw.Body)
	if err != nil {
		s.logger.Warn("dropping malformed message", "message_id", raw.MessageId, "error", err)
		raw.Nack(false, false)
		return
	}

	if err := handle(ctx, change); err != nil {
		s.logger.Error("handler failed", "message_id", raw.MessageId, "error", err)
		raw.Nack(false, true)
		return
	}
	raw.Ack(false)
}

func decodeDelivery(body []byte) (domain.StatusChange, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return domain.StatusChange{}, fmt.Errorf("unmarshal message: %w", err)
	}
	return msg.StatusChange()
}
