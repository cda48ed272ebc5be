package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/filesmanager/internal/ctxkeys"
	"github.com/templui/filesmanager/internal/response"
	"github.com/templui/filesmanager/internal/service"
)

const msgInternal = "Internal server error"

// writeError maps service errors to status codes. Anything unrecognized is
// logged and reported as 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		response.Error(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrFolderHasNoContent):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		response.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", ctxkeys.RequestID(r.Context()),
		)
		response.Error(w, http.StatusInternalServerError, msgInternal)
	}
}

// writeDecodeError reports a request body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, "Request too large")
		return
	}
	response.Error(w, http.StatusBadRequest, "Invalid JSON")
}
