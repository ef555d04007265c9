package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inventory-service/internal/domain"
	"inventory-service/internal/middleware"
)

// decodeRequest decodes and validates the body into req. On failure it writes
// the 400 response and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, req interface{}, logger *zap.Logger) bool {
	err := middleware.DecodeAndValidate(r, req)
	if err == nil {
		return true
	}

	logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))

	if fields := middleware.FormatValidationErrors(err); len(fields) > 0 {
		middleware.RespondWithFieldErrors(w, fields)
		return false
	}

	middleware.RespondWithError(w, http.StatusBadRequest, middleware.ErrMalformedBody.Error())
	return false
}

// pathID parses a positive integer URL parameter
func pathID(w http.ResponseWriter, r *http.Request, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid "+label+" id")
		return 0, false
	}
	return id, true
}

// statusFor maps a domain error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError writes the domain message with its status. Anything
// else is logged and hidden behind a generic 500.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		middleware.RespondWithError(w, status, "Internal server error")
		return
	}

	middleware.RespondWithError(w, status, domain.Message(err))
}
