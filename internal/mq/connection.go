package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNoChannel — соединение не установлено или закрыто.
var ErrNoChannel = errors.New("no amqp channel available")

const (
	dialTimeout       = 10 * time.Second
	maxReconnectDelay = 30 * time.Second
	connectionName    = "garden-cli"
)

// SetupFunc вызывается на каждом новом канале (после connect и reconnect).
type SetupFunc func(ch *amqp.Channel) error

// Connection — AMQP соединение с автоматическим reconnect.
//
// После каждого подключения вызывается SetupFunc, поэтому топология
// и QoS восстанавливаются вместе с каналом.
type Connection struct {
	url    string
	logger *slog.Logger
	setup  SetupFunc

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel

	closed   bool
	closedCh chan struct{}

	// reconnectCh получает сигнал после успешного reconnect.
	reconnectCh chan struct{}
}

// Dial подключается к RabbitMQ. setup может быть nil.
func Dial(url string, setup SetupFunc, logger *slog.Logger) (*Connection, error) {
	c := &Connection{
		url:         url,
		logger:      logger,
		setup:       setup,
		closedCh:    make(chan struct{}),
		reconnectCh: make(chan struct{}, 1),
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	go c.watchConnection()

	return c, nil
}

func (c *Connection) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(connectionName)

	conn, err := amqp.DialConfig(c.url, amqp.Config{
		Properties: props,
		Dial:       amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := c.openChannel(conn)
	if err != nil {
		conn.Close()
		return err
	}

	c.conn = conn
	c.channel = ch
	c.logger.Debug("connected to RabbitMQ")

	return nil
}

// openChannel открывает канал на conn и вызывает setup.
func (c *Connection) openChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if c.setup != nil {
		if err := c.setup(ch); err != nil {
			ch.Close()
			return nil, fmt.Errorf("setup channel: %w", err)
		}
	}
	return ch, nil
}

// watchConnection ждёт закрытия соединения или канала и восстанавливает их.
// Канал закрывается сервером и при живом соединении (channel exception).
func (c *Connection) watchConnection() {
	for {
		c.mu.RLock()
		conn := c.conn
		ch := c.channel
		c.mu.RUnlock()

		connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
		chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-c.closedCh:
			return
		case err := <-connClosed:
			if err != nil {
				c.logger.Warn("amqp connection lost", "error", err)
			}
			if !c.reconnect() {
				return
			}
		case err := <-chClosed:
			if c.isClosed() {
				return
			}
			if err != nil {
				c.logger.Warn("amqp channel closed", "error", err)
			}
			if !c.reopenChannel() {
				return
			}
		}
	}
}

// reopenChannel открывает новый канал на живом соединении.
// Если соединение тоже закрыто, выполняет полный reconnect.
func (c *Connection) reopenChannel() bool {
	delay := time.Second

	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn.IsClosed() {
			return c.reconnect()
		}

		ch, err := c.openChannel(conn)
		if err == nil {
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				ch.Close()
				return false
			}
			c.channel = ch
			c.mu.Unlock()

			c.logger.Info("amqp channel reopened")
			c.notifyReconnect()
			return true
		}

		c.logger.Warn("amqp channel reopen failed", "error", err, "retry_in", delay)
		select {
		case <-c.closedCh:
			return false
		case <-time.After(delay):
		}
		delay = min(delay*2, maxReconnectDelay)
	}
}

// reconnect повторяет connect с экспоненциальной задержкой.
// Возвращает false, если соединение закрыли во время ожидания.
func (c *Connection) reconnect() bool {
	delay := time.Second

	for {
		select {
		case <-c.closedCh:
			return false
		case <-time.After(delay):
		}

		if err := c.connect(); err != nil {
			c.logger.Warn("amqp reconnect failed", "error", err, "retry_in", delay)
			delay = min(delay*2, maxReconnectDelay)
			continue
		}

		c.logger.Info("reconnected to RabbitMQ")
		c.notifyReconnect()
		return true
	}
}

func (c *Connection) notifyReconnect() {
	select {
	case c.reconnectCh <- struct{}{}:
	default:
	}
}

func (c *Connection) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// ReconnectNotify возвращает канал уведомлений о переподключении
// соединения или повторном открытии канала.
func (c *Connection) ReconnectNotify() <-chan struct{} {
	return c.reconnectCh
}

// IsConnected проверяет, установлено ли соединение.
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.conn != nil && !c.conn.IsClosed()
}

// WithChannel выполняет fn с текущим каналом.
func (c *Connection) WithChannel(ctx context.Context, fn func(ch *amqp.Channel) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.RLock()
	ch := c.channel
	closed := c.closed
	c.mu.RUnlock()

	if closed || ch == nil || ch.IsClosed() {
		return ErrNoChannel
	}
	return fn(ch)
}

// Close закрывает канал и соединение. Повторный вызов ничего не делает.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.closedCh)

	var errs []error
	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
