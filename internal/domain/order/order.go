package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// Statuses lists every known status.
var Statuses = []Status{StatusNew, StatusInProgress, StatusCompleted, StatusCancelled}

// ParseStatus resolves a status name, ignoring case. Numeric values are not
// accepted.
func ParseStatus(name string) (Status, bool) {
	for _, s := range Statuses {
		if strings.EqualFold(string(s), name) {
			return s, true
		}
	}
	return "", false
}

// Order is a customer's order of agency services.
type Order struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
	Total     decimal.Decimal
	Status    Status
	Lines     []Line
}

// Line is one ordered service. Price is the per-unit price net of any
// discount applied at the last pricing or repricing.
type Line struct {
	ServiceID int64
	Price     decimal.Decimal
	Quantity  int
}

// Subtotal returns Price * Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineRequest is a requested service and quantity.
type LineRequest struct {
	ServiceID int64
	Quantity  int
}

// SumLines returns the sum of line subtotals.
func SumLines(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Repository defines persistence operations for orders. Get and GetForUpdate
// return an *apperr.NotFoundError for unknown ids.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id int64) (*Order, error)
	// GetForUpdate is Get that also locks the order until the session ends.
	GetForUpdate(ctx context.Context, id int64) (*Order, error)
	// Update persists status, total and line prices.
	Update(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
}
