package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/parvej/showcase/internal/auth"
	"github.com/parvej/showcase/internal/domain/catalog"
	"github.com/parvej/showcase/internal/remotestore"
)

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
	}

	var cascade *catalog.CascadeDeleteError
	if errors.As(err, &cascade) {
		writeJSON(w, status, func(e *jx.Encoder) {
			e.ObjStart()
			e.FieldStart("code")
			e.Int(status)
			e.FieldStart("message")
			e.Str(cascade.Error())
			e.FieldStart("collectionId")
			e.Str(cascade.CollectionID)
			e.FieldStart("failedProductId")
			e.Str(cascade.FailedProductID)
			e.FieldStart("deleted")
			e.Int(cascade.Deleted)
			e.ObjEnd()
		})
		return
	}

	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// errorStatus maps domain errors onto the API error taxonomy. Anything
// unrecognized is treated as a remote store failure.
func errorStatus(err error) (int, string) {
	var cascade *catalog.CascadeDeleteError

	switch {
	case errors.As(err, &cascade):
		return http.StatusConflict, cascade.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, catalog.ErrCollectionNotFound):
		return http.StatusNotFound, "collection not found"
	case errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, remotestore.ErrNotFound):
		return http.StatusNotFound, "record not found"
	case errors.Is(err, catalog.ErrNegativePrice):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, catalog.ErrShopExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusBadGateway, "remote store: " + err.Error()
	}
}

var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return errors.Wrap(errBadRequest, msg)
}
