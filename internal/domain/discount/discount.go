package discount

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount is a percentage reduction on one service, valid within an
// inclusive time window.
type Discount struct {
	ID         int64
	Percentage int
	StartDate  time.Time
	EndDate    time.Time
	ServiceID  int64
}

// Key identifies a discount by what it covers. Two discounts with the same
// Key are duplicates regardless of percentage.
type Key struct {
	ServiceID int64
	Start     time.Time
	End       time.Time
}

// Key returns the identity of what d covers.
func (d Discount) Key() Key {
	return Key{ServiceID: d.ServiceID, Start: d.StartDate.UTC(), End: d.EndDate.UTC()}
}

func (k Key) String() string {
	return strconv.FormatInt(k.ServiceID, 10) + "|" +
		strconv.FormatInt(k.Start.Unix(), 10) + "|" +
		strconv.FormatInt(k.End.Unix(), 10)
}

// IsActiveAt reports whether now falls within [StartDate, EndDate].
func (d Discount) IsActiveAt(now time.Time) bool {
	return !now.Before(d.StartDate) && !now.After(d.EndDate)
}

// AppliesTo reports whether the discount targets the service.
func (d Discount) AppliesTo(serviceID int64) bool {
	return d.ServiceID == serviceID
}

// Apply returns price reduced by the discount percentage.
func (d Discount) Apply(price decimal.Decimal) decimal.Decimal {
	return ApplyPercentage(price, d.Percentage)
}

// ApplyPercentage returns price * (100 - pct) / 100, rounded half to even to
// two decimal places.
func ApplyPercentage(price decimal.Decimal, pct int) decimal.Decimal {
	factor := hundred.Sub(decimal.NewFromInt(int64(pct)))
	return price.Mul(factor).Div(hundred).RoundBank(2)
}

// Active returns the discounts active at now, preserving input order.
func Active(ds []Discount, now time.Time) []Discount {
	active := make([]Discount, 0, len(ds))
	for _, d := range ds {
		if d.IsActiveAt(now) {
			active = append(active, d)
		}
	}
	return active
}

// FirstFor returns the first discount in ds that targets serviceID.
func FirstFor(ds []Discount, serviceID int64) (Discount, bool) {
	for _, d := range ds {
		if d.AppliesTo(serviceID) {
			return d, true
		}
	}
	return Discount{}, false
}

// Repository provides discount persistence. GetByID, Update and Delete return
// an *apperr.NotFoundError for unknown ids.
type Repository interface {
	List(ctx context.Context) ([]Discount, error)
	GetByID(ctx context.Context, id int64) (*Discount, error)
	Create(ctx context.Context, d *Discount) error
	Update(ctx context.Context, d *Discount) error
	Delete(ctx context.Context, id int64) error
}
