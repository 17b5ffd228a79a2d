package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

// WriteJSONError writes err as coded JSON with the matching HTTP status.
func WriteJSONError(w http.ResponseWriter, err error) {
	body, merr := errors.FormatJSON(err)
	if merr != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(err))
	_, _ = w.Write(append(body, '\n'))
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidQuery, errors.ErrCodeInvalidSchema,
		errors.ErrCodeFieldNotFound, errors.ErrCodeMultiSort, errors.ErrCodeInvalidSort,
		errors.ErrCodeInvalidPageRange:
		return http.StatusBadRequest
	case errors.ErrCodeUnknownModel, errors.ErrCodeNotFound, errors.ErrCodeIndexNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeLockFailed:
		return http.StatusConflict
	case errors.ErrCodeBackendCommand:
		return http.StatusBadGateway
	case errors.ErrCodeNetworkTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetworkUnavailable, errors.ErrCodeCircuitOpen:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
