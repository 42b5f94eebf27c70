package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
)

func (h *Handler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	ds, err := h.discounts.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeList(e, ds, encodeDiscount) })
}

func (h *Handler) ListActiveDiscounts(w http.ResponseWriter, r *http.Request) {
	ds, err := h.discounts.ListActive(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeList(e, ds, encodeDiscount) })
}

func (h *Handler) GetDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.discounts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeDiscount(e, d) })
}

func (h *Handler) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := readDiscountInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.discounts.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeDiscount(e, d) })
}

func (h *Handler) UpdateDiscount(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := readDiscountInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.discounts.Update(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeDiscount(e, d) })
}

func (h *Handler) DeleteDiscount(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.discounts.Delete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readDiscountInput decodes
// {"percentage":10,"startDate":"2025-01-01","endDate":"2025-02-01","serviceId":3}.
func readDiscountInput(w http.ResponseWriter, r *http.Request) (discount.Input, error) {
	var in discount.Input
	err := readBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "percentage":
			in.Percentage, err = d.Int()
		case "startDate":
			in.StartDate, err = decodeTime(d)
		case "endDate":
			in.EndDate, err = decodeTime(d)
		case "serviceId":
			in.ServiceID, err = d.Int64()
		default:
			err = d.Skip()
		}
		return err
	})
	return in, err
}
