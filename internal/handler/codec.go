package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/order"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/quickorder"
)

const maxBodyBytes = 1 << 20

const dateLayout = "2006-01-02"

// readBody decodes the request body as a JSON object, calling field for
// each key. Malformed input is reported as a validation error.
func readBody(w http.ResponseWriter, r *http.Request, field func(d *jx.Decoder, key string) error) error {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return apperr.Validation("request body is too large or unreadable")
	}
	if err := jx.DecodeBytes(raw).Obj(field); err != nil {
		var v *apperr.ValidationError
		if errors.As(err, &v) {
			return v
		}
		return apperr.Validationf("invalid request body: %v", err)
	}
	return nil
}

// decodeTime accepts RFC 3339 timestamps and plain dates.
func decodeTime(d *jx.Decoder) (time.Time, error) {
	s, err := d.Str()
	if err != nil {
		return time.Time{}, err
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Validationf("invalid date %q", s)
	}
	return t, nil
}

// decodeMoney accepts a JSON number or a numeric string.
func decodeMoney(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	} else {
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = string(n)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Validationf("invalid amount %q", raw)
	}
	return v, nil
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	v := r.PathValue(name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("invalid %s %q", name, v)
	}
	return id, nil
}

// actorID reads the acting user from the X-User-Id header.
func actorID(r *http.Request) (int64, error) {
	v := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if v == "" {
		return 0, errMissingActor
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("invalid X-User-Id %q", v)
	}
	return id, nil
}

func money(e *jx.Encoder, d decimal.Decimal) {
	e.Raw([]byte(d.StringFixed(2)))
}

func timestamp(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(o.ID) })
		e.Field("userId", func(e *jx.Encoder) { e.Int64(o.UserID) })
		e.Field("createdAt", func(e *jx.Encoder) { timestamp(e, o.CreatedAt) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("total", func(e *jx.Encoder) { money(e, o.Total) })
		e.Field("items", func(e *jx.Encoder) {
			e.ArrStart()
			for _, l := range o.Lines {
				e.Obj(func(e *jx.Encoder) {
					e.Field("serviceId", func(e *jx.Encoder) { e.Int64(l.ServiceID) })
					e.Field("price", func(e *jx.Encoder) { money(e, l.Price) })
					e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
					e.Field("subtotal", func(e *jx.Encoder) { money(e, l.Subtotal()) })
				})
			}
			e.ArrEnd()
		})
	})
}

func encodeDiscount(e *jx.Encoder, d *discount.Discount) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(d.ID) })
		e.Field("percentage", func(e *jx.Encoder) { e.Int(d.Percentage) })
		e.Field("startDate", func(e *jx.Encoder) { timestamp(e, d.StartDate) })
		e.Field("endDate", func(e *jx.Encoder) { timestamp(e, d.EndDate) })
		e.Field("serviceId", func(e *jx.Encoder) { e.Int64(d.ServiceID) })
	})
}

func encodeService(e *jx.Encoder, s *catalog.Service) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(s.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(s.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(s.Description) })
		e.Field("price", func(e *jx.Encoder) { money(e, s.Price) })
		e.Field("isActive", func(e *jx.Encoder) { e.Bool(s.IsActive) })
		e.Field("categoryId", func(e *jx.Encoder) { e.Int64(s.CategoryID) })
	})
}

func encodeCategory(e *jx.Encoder, c *catalog.Category) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(c.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
	})
}

func encodePrintProduct(e *jx.Encoder, p *catalog.PrintProduct) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("title", func(e *jx.Encoder) { e.Str(p.Title) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("baseCost", func(e *jx.Encoder) { money(e, p.BaseCost) })
		e.Field("size", func(e *jx.Encoder) { e.Str(p.Size) })
		e.Field("paperType", func(e *jx.Encoder) { e.Str(p.PaperType) })
		e.Field("printType", func(e *jx.Encoder) { e.Str(p.PrintType) })
		e.Field("categoryId", func(e *jx.Encoder) { e.Int64(p.CategoryID) })
	})
}

func encodeUser(e *jx.Encoder, u *identity.User) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(u.ID) })
		e.Field("email", func(e *jx.Encoder) { e.Str(u.Email) })
		e.Field("role", func(e *jx.Encoder) { e.Str(u.Role.String()) })
	})
}

func encodeQuickOrder(e *jx.Encoder, q *quickorder.QuickOrder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(q.ID) })
		e.Field("customerName", func(e *jx.Encoder) { e.Str(q.CustomerName) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(q.Phone) })
		e.Field("serviceId", func(e *jx.Encoder) { e.Int64(q.ServiceID) })
		e.Field("createdAt", func(e *jx.Encoder) { timestamp(e, q.CreatedAt) })
	})
}

// encodeList writes items as a JSON array using enc for each element.
func encodeList[T any](e *jx.Encoder, items []T, enc func(*jx.Encoder, *T)) {
	e.ArrStart()
	for i := range items {
		enc(e, &items[i])
	}
	e.ArrEnd()
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
