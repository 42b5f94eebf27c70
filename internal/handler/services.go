package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
)

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeList(e, services, encodeService) })
}

func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.services.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeService(e, s) })
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := readServiceInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.catalog.CreateService(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeService(e, s) })
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
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
	in, err := readServiceInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.catalog.UpdateService(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeService(e, s) })
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
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

	if err := h.catalog.DeleteService(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readServiceInput decodes
// {"name":"Billboard","description":"6x3 m","price":100.5,"isActive":true,"categoryId":1}.
func readServiceInput(w http.ResponseWriter, r *http.Request) (catalog.ServiceInput, error) {
	var in catalog.ServiceInput
	err := readBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			in.Name, err = d.Str()
		case "description":
			in.Description, err = d.Str()
		case "price":
			in.Price, err = decodeMoney(d)
		case "isActive":
			in.IsActive, err = d.Bool()
		case "categoryId":
			in.CategoryID, err = d.Int64()
		default:
			err = d.Skip()
		}
		return err
	})
	return in, err
}
