package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
)

func (h *Handler) ListPrintProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.catalog.ListPrintProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeList(e, ps, encodePrintProduct) })
}

func (h *Handler) GetPrintProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.catalog.GetPrintProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodePrintProduct(e, p) })
}

func (h *Handler) CreatePrintProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := readPrintProductInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.catalog.CreatePrintProduct(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodePrintProduct(e, p) })
}

func (h *Handler) UpdatePrintProduct(w http.ResponseWriter, r *http.Request) {
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
	in, err := readPrintProductInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.catalog.UpdatePrintProduct(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodePrintProduct(e, p) })
}

func (h *Handler) DeletePrintProduct(w http.ResponseWriter, r *http.Request) {
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

	if err := h.catalog.DeletePrintProduct(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readPrintProductInput(w http.ResponseWriter, r *http.Request) (catalog.PrintProductInput, error) {
	var in catalog.PrintProductInput
	err := readBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "title":
			in.Title, err = d.Str()
		case "description":
			in.Description, err = d.Str()
		case "baseCost":
			in.BaseCost, err = decodeMoney(d)
		case "size":
			in.Size, err = d.Str()
		case "paperType":
			in.PaperType, err = d.Str()
		case "printType":
			in.PrintType, err = d.Str()
		case "categoryId":
			in.CategoryID, err = d.Int64()
		default:
			err = d.Skip()
		}
		return err
	})
	return in, err
}
