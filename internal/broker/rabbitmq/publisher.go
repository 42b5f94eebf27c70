package rabbitmq

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/order"
	"github.com/DianaBudova/AdvertisingAgency/pkg/httpmiddleware"
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

var _ order.Publisher = (*Publisher)(nil)

// Publisher sends order events as persistent JSON messages routed by event
// type.
type Publisher struct {
	ch    channel
	newID func() string
}

// NewPublisher returns a Publisher that publishes on ch.
func NewPublisher(ch channel) *Publisher {
	return &Publisher{
		ch:    ch,
		newID: func() string { return uuid.New().String() },
	}
}

// Publish implements order.Publisher. The request ID in ctx, if any, becomes
// the message correlation ID.
func (p *Publisher) Publish(ctx context.Context, e order.Event) error {
	err := p.ch.PublishWithContext(ctx,
		ExchangeName,
		string(e.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     p.newID(),
			CorrelationId: httpmiddleware.RequestIDFromContext(ctx),
			Timestamp:     e.OccurredAt,
			Type:          string(e.Type),
			Body:          encodeEvent(e),
		},
	)
	if err != nil {
		return errors.Wrapf(err, "publish %s for order %d", e.Type, e.OrderID)
	}
	return nil
}

func encodeEvent(e order.Event) []byte {
	var enc jx.Encoder
	enc.Obj(func(enc *jx.Encoder) {
		enc.Field("type", func(enc *jx.Encoder) { enc.Str(string(e.Type)) })
		enc.Field("orderId", func(enc *jx.Encoder) { enc.Int64(e.OrderID) })
		enc.Field("userId", func(enc *jx.Encoder) { enc.Int64(e.UserID) })
		enc.Field("status", func(enc *jx.Encoder) { enc.Str(string(e.Status)) })
		enc.Field("total", func(enc *jx.Encoder) { enc.Str(e.Total.StringFixed(2)) })
		if e.DiscountID != 0 {
			enc.Field("discountId", func(enc *jx.Encoder) { enc.Int64(e.DiscountID) })
		}
		enc.Field("occurredAt", func(enc *jx.Encoder) { enc.Str(e.OccurredAt.UTC().Format(time.RFC3339Nano)) })
	})
	return enc.Bytes()
}
