package httpapi

import (
	"encoding/json"
	"net/http"

	"healthrelay/internal/relay"
	"healthrelay/pkg/types"
)

// Client-facing messages. Error details stay in server logs.
const (
	msgUnavailable     = "The prediction service is unavailable. Is the Python ML server running?"
	msgBackendError    = "An error occurred on the backend server."
	msgUnsupportedType = "Content-Type must be application/json"
	msgInvalidJSON     = "invalid JSON body"
	msgShuttingDown    = "The relay is shutting down. Retry the request."
)

// statusFor maps a predictor error to a status code and client message.
// Only an unreachable upstream is special-cased; everything else is a 500.
func statusFor(err error) (int, string) {
	if relay.IsUnavailable(err) {
		return http.StatusServiceUnavailable, msgUnavailable
	}
	return http.StatusInternalServerError, msgBackendError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Message: msg})
}
