package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"atelier-store/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code. The status
// line is already on the wire by the time encoding can fail, so a failure
// here cannot be surfaced to the client.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code, error
// code, and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// statusForCode maps domain error codes to HTTP status codes. Validation
// errors are 400, conflicts 409, not-found 404.
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeEmptyCart,
		model.ErrCodeInvalidQuantity,
		model.ErrCodeMissingReason,
		model.ErrCodeInvalidStatus,
		model.ErrCodeInvalidJSON,
		model.ErrCodeInvalidFilter:
		return http.StatusBadRequest
	case model.ErrCodeInsufficientStock,
		model.ErrCodeInvalidTransition,
		model.ErrCodeAlreadySuspended,
		model.ErrCodeAlreadyActive,
		model.ErrCodeSelfActionForbidden:
		return http.StatusConflict
	case model.ErrCodeProductNotFound,
		model.ErrCodeOrderNotFound,
		model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError translates a service-layer error into a structured
// response. Unexpected internal faults are logged in full and surfaced
// generically.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		logger.Warn().
			Str("product_id", stockErr.ProductID).
			Int("available", stockErr.Available).
			Msg("insufficient stock")
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:     model.ErrCodeInsufficientStock,
			Message:   stockErr.Error(),
			ProductID: stockErr.ProductID,
			Available: &stockErr.Available,
		})
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, statusForCode(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected internal error")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal error", logger)
}
