package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeList(e, cs, encodeCategory) })
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name, err := readCategoryName(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.catalog.CreateCategory(r.Context(), actor, name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeCategory(e, c) })
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
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
	name, err := readCategoryName(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.catalog.UpdateCategory(r.Context(), actor, id, name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCategory(e, c) })
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
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

	if err := h.catalog.DeleteCategory(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readCategoryName decodes {"name":"Outdoor"}.
func readCategoryName(w http.ResponseWriter, r *http.Request) (string, error) {
	var name string
	err := readBody(w, r, func(d *jx.Decoder, key string) error {
		if key != "name" {
			return d.Skip()
		}
		var err error
		name, err = d.Str()
		return err
	})
	return name, err
}
