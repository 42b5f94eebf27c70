package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
)

// MaxQuantity is the largest quantity a single line may carry.
const MaxQuantity = 1_000_000

var (
	errNotPending       = apperr.Validation("can only apply discounts to pending orders")
	errDiscountInactive = apperr.Validation("discount is not active")
)

// PriceLines prices the requested lines against the catalog and the given
// active discounts. Each line takes the first active discount targeting its
// service; the unit price is rounded to cents before it is multiplied by the
// quantity, so the returned total always equals SumLines(lines).
func PriceLines(
	reqs []LineRequest,
	services map[int64]catalog.Service,
	active []discount.Discount,
	now time.Time,
) ([]Line, decimal.Decimal, error) {
	if len(reqs) == 0 {
		return nil, decimal.Zero, ErrEmptyOrder
	}

	lines := make([]Line, 0, len(reqs))
	total := decimal.Zero
	for _, req := range reqs {
		if req.Quantity < 1 {
			return nil, decimal.Zero, apperr.Validationf("quantity must be at least 1 for service %d", req.ServiceID)
		}
		if req.Quantity > MaxQuantity {
			return nil, decimal.Zero, apperr.Validationf("quantity must be at most %d for service %d", MaxQuantity, req.ServiceID)
		}
		svc, ok := services[req.ServiceID]
		if !ok {
			return nil, decimal.Zero, apperr.NotFound("service", req.ServiceID)
		}

		price := svc.Price
		if d, ok := discount.FirstFor(active, req.ServiceID); ok && d.IsActiveAt(now) {
			price = d.Apply(price)
		}

		line := Line{
			ServiceID: req.ServiceID,
			Price:     price,
			Quantity:  req.Quantity,
		}
		total = total.Add(line.Subtotal())
		lines = append(lines, line)
	}

	return lines, total, nil
}

// ApplyDiscount reprices every line targeted by d and recomputes the total.
// The discount is taken off the current line price, so applying discounts
// repeatedly compounds. It fails without touching the order unless the order
// is in progress and d is active at now. It returns the number of repriced
// lines.
func (o *Order) ApplyDiscount(d discount.Discount, now time.Time) (int, error) {
	if o.Status != StatusInProgress {
		return 0, errNotPending
	}
	if !d.IsActiveAt(now) {
		return 0, errDiscountInactive
	}

	repriced := 0
	for i := range o.Lines {
		if d.AppliesTo(o.Lines[i].ServiceID) {
			o.Lines[i].Price = d.Apply(o.Lines[i].Price)
			repriced++
		}
	}
	o.Total = SumLines(o.Lines)

	return repriced, nil
}

// requestedIDs returns the distinct service ids in reqs, in first-seen order.
func requestedIDs(reqs []LineRequest) []int64 {
	seen := make(map[int64]struct{}, len(reqs))
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		if _, ok := seen[r.ServiceID]; ok {
			continue
		}
		seen[r.ServiceID] = struct{}{}
		ids = append(ids, r.ServiceID)
	}
	return ids
}
