package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
)

var errMissingActor = errors.New("missing X-User-Id header")

// writeError maps err onto a status code and a {"code","message"} body.
// Unclassified errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status  int
		message string

		validation *apperr.ValidationError
		notFound   *apperr.NotFoundError
		forbidden  *apperr.ForbiddenError
	)
	switch {
	case errors.Is(err, errMissingActor), errors.Is(err, errUnauthorized):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.As(err, &validation):
		status, message = http.StatusBadRequest, validation.Error()
	case errors.As(err, &notFound):
		status, message = http.StatusNotFound, notFound.Error()
	case errors.As(err, &forbidden):
		status, message = http.StatusForbidden, forbidden.Error()
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		status, message = http.StatusInternalServerError, "internal error"
	}

	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}
