package handlers

import (
	"net/http"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/handlers/render"
	"github.com/nkiryanov/ministore/internal/logger"
)

// renderError writes domain error with its code, anything else is an internal error
func renderError(w http.ResponseWriter, err error, l logger.Logger) {
	code, status, ok := apperrors.Code(err)

	switch {
	case !ok:
		l.Error("Unexpected service error", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	case status >= http.StatusInternalServerError:
		l.Error("Service failed", "code", code, "error", err)
		render.CodedError(w, code, "Internal server error", status)
	default:
		render.CodedError(w, code, err.Error(), status)
	}
}
