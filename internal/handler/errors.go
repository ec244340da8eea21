package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/orbit-storefront/internal/content"
	"github.com/xenking/orbit-storefront/internal/domain/cart"
	"github.com/xenking/orbit-storefront/internal/domain/catalog"
)

// statusOf maps domain errors to a status code and a client-safe message.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, cart.ErrEmailRequired),
		errors.Is(err, cart.ErrProductRequired),
		errors.Is(err, catalog.ErrUnknownTab),
		errors.Is(err, content.ErrEmptySlug):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, cart.ErrProductNotFound):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound, "content not found"
	case errors.Is(err, catalog.ErrClosed):
		return http.StatusServiceUnavailable, "catalog is shutting down"
	case errors.Is(err, content.ErrTransient):
		return http.StatusBadGateway, "content origin unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// fail writes err as a {code, message} response. Server-side failures are
// logged.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Warn("Request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeError(w, status, msg)
}
