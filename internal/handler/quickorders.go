package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/quickorder"
)

// CreateQuickOrder handles POST /api/quick-orders. No actor is required.
func (h *Handler) CreateQuickOrder(w http.ResponseWriter, r *http.Request) {
	var req quickorder.CreateRequest
	err := readBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "customerName":
			req.CustomerName, err = d.Str()
		case "phone":
			req.Phone, err = d.Str()
		case "serviceId":
			req.ServiceID, err = d.Int64()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	q, err := h.quickOrders.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeQuickOrder(e, q) })
}

func (h *Handler) ListQuickOrders(w http.ResponseWriter, r *http.Request) {
	qs, err := h.quickOrders.ListByCustomer(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeList(e, qs, encodeQuickOrder) })
}
