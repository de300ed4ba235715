package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
)

// MessageType — тип сообщения.
type MessageType string

// MessageTypeStatusChanged — смена состояния plant или worker'а.
const MessageTypeStatusChanged MessageType = "status.changed"

// Message — конверт события.
type Message struct {
	// ID — уникальный идентификатор сообщения (совпадает с ID события).
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload json.RawMessage `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// NewStatusMessage упаковывает смену состояния в конверт.
func NewStatusMessage(change domain.StatusChange) (*Message, error) {
	payload, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	return &Message{
		ID:        change.ID.String(),
		Type:      MessageTypeStatusChanged,
		Payload:   payload,
		Timestamp: change.ObservedAt,
	}, nil
}

// StatusChange извлекает смену состояния из конверта.
func (m *Message) StatusChange() (domain.StatusChange, error) {
	var change domain.StatusChange
	if m.Type != MessageTypeStatusChanged {
		return change, fmt.Errorf("unexpected message type %q", m.Type)
	}
	if err := json.Unmarshal(m.Payload, &change); err != nil {
		return change, fmt.Errorf("unmarshal payload: %w", err)
	}
	return change, nil
}

// Publisher публикует события в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в ExchangeEvents с routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeEvents), // exchange
			string(routingKey),     // routing key
			false,                  // mandatory
			false,                  // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				AppId:        connectionName,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", ExchangeEvents, routingKey, err)
		}

		p.logger.Debug("published message",
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishStatusChange публикует смену состояния с routing key "<entity>.status".
// Сигнатура совпадает с watch.SinkFunc.
func (p *Publisher) PublishStatusChange(ctx context.Context, change domain.StatusChange) error {
	msg, err := NewStatusMessage(change)
	if err != nil {
		return err
	}
	return p.Publish(ctx, StatusRoutingKey(change.Entity), msg)
}
