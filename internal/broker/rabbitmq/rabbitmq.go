// Package rabbitmq publishes order events to a RabbitMQ topic exchange.
package rabbitmq

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// ExchangeName is the topic exchange order events are published to.
	ExchangeName = "agency.orders"
	ExchangeType = "topic"

	dialAttempts = 5
	dialBackoff  = 2 * time.Second
)

// Conn is an open connection with a channel on which the exchange has been
// declared.
type Conn struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to url, retrying while the broker is starting up, and
// declares the order exchange.
func Dial(ctx context.Context, url string) (*Conn, error) {
	lg := zctx.From(ctx)

	var (
		conn *amqp.Connection
		err  error
	)
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		lg.Warn("RabbitMQ dial failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == dialAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dialBackoff):
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "dial rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	if err := ch.ExchangeDeclare(
		ExchangeName,
		ExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "declare exchange")
	}

	return &Conn{conn: conn, ch: ch}, nil
}

// Channel returns the channel the exchange was declared on.
func (c *Conn) Channel() *amqp.Channel {
	return c.ch
}

// Healthy reports an error when the connection has been closed.
func (c *Conn) Healthy(context.Context) error {
	if c.conn.IsClosed() {
		return errors.New("rabbitmq connection closed")
	}
	return nil
}

// Close closes the channel and the connection.
func (c *Conn) Close() error {
	_ = c.ch.Close()
	return c.conn.Close()
}
