// Package middleware provides HTTP middleware components.
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// Request-shape validation: presence checks only. Semantic validation
// (email shape, uniqueness) belongs to the core and surfaces as
// validation errors from there.

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminCheckBody struct {
	ID string `json:"id"`
}

// ValidateCredentials rejects sign-up and sign-in requests missing the
// email or password field before they reach the core.
func ValidateCredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bufferBody(w, r)
		if !ok {
			return
		}

		var req credentialsBody
		if err := json.Unmarshal(body, &req); err != nil || req.Email == "" || req.Password == "" {
			writeValidationError(w, "email or password missing in the request")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ValidateAdminCheck rejects admin-check requests missing the user id.
func ValidateAdminCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bufferBody(w, r)
		if !ok {
			return
		}

		var req adminCheckBody
		if err := json.Unmarshal(body, &req); err != nil || req.ID == "" {
			writeValidationError(w, "user id not given")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// bufferBody reads the request body and restores it so the handler can
// decode it again.
func bufferBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeValidationError(w, "could not read request body")
		return nil, false
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, true
}

// writeValidationError writes a 400 response in the uniform envelope.
func writeValidationError(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": "something went wrong",
		"data":    struct{}{},
		"err":     detail,
	})
}
