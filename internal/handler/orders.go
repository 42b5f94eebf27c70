package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/order"
)

// CreateOrder handles POST /api/orders with a body of
// {"userId":1,"items":[{"serviceId":2,"quantity":3}]}.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req order.CreateRequest
	err := readBody(w, r, func(d *jx.Decoder, key string) error {
		switch key {
		case "userId":
			v, err := d.Int64()
			req.UserID = v
			return err
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				var line order.LineRequest
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "serviceId":
						line.ServiceID, err = d.Int64()
					case "quantity":
						line.Quantity, err = d.Int()
					default:
						err = d.Skip()
					}
					return err
				}); err != nil {
					return err
				}
				req.Lines = append(req.Lines, line)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// GetOrder handles GET /api/orders/{orderId}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "orderId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.GetOrder(r.Context(), id, actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// GetUserOrders handles GET /api/orders/user/{userId}.
func (h *Handler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	orders, err := h.orders.GetUserOrders(r.Context(), userID, actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeList(e, orders, encodeOrder) })
}

// ChangeOrderStatus handles PATCH /api/orders/{orderId}/status/{status}.
func (h *Handler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "orderId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.orders.ChangeOrderStatus(r.Context(), id, r.PathValue("status"), actor); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyDiscount handles POST /api/orders/{orderId}/discounts/{discountId}.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	orderID, err := pathID(r, "orderId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	discountID, err := pathID(r, "discountId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.ApplyDiscountToOrder(r.Context(), orderID, discountID, actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}
