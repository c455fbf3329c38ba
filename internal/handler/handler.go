// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/authcore/authcore/internal/apperr"
)

// Envelope is the uniform response shape for every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Err     any    `json:"err"`
}

// writeSuccess writes a success envelope with the given status code.
func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Err:     struct{}{},
	})
}

// writeError maps a service error to its status code and writes a
// failure envelope. The mapping is total: every kind resolves to
// exactly one status, and unknown errors read as internal failures.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(apperr.KindOf(err))

	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal detail is logged where the error was classified;
		// the caller gets a generic message.
		message = "something went wrong"
	}

	writeJSON(w, status, Envelope{
		Success: false,
		Message: message,
		Data:    struct{}{},
		Err:     apperr.KindOf(err).String(),
	})
}

// statusFor resolves an error kind to an HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthentication, apperr.KindInvalidToken:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindStorage, apperr.KindUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NotFound handles 404 responses for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, Envelope{
		Success: false,
		Message: "resource not found",
		Data:    struct{}{},
		Err:     "not_found",
	})
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, Envelope{
		Success: false,
		Message: "method not allowed",
		Data:    struct{}{},
		Err:     "method_not_allowed",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
