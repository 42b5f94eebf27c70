package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventType names an order event. It doubles as the message routing key.
type EventType string

const (
	EventCreated         EventType = "order.created"
	EventStatusChanged   EventType = "order.status_changed"
	EventDiscountApplied EventType = "order.discount_applied"
)

// Event describes a committed change to an order.
type Event struct {
	Type       EventType
	OrderID    int64
	UserID     int64
	Status     Status
	Total      decimal.Decimal
	DiscountID int64
	OccurredAt time.Time
}

// Publisher delivers order events to interested parties. Events are
// published after the change is committed; delivery failures never undo it.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
