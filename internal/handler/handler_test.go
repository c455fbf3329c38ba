package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/authcore/authcore/internal/apperr"
)

// Every error kind must map to exactly one status; unknown errors read
// as internal failures.
func TestStatusFor_Total(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.KindValidation, http.StatusBadRequest},
		{apperr.KindAuthentication, http.StatusUnauthorized},
		{apperr.KindInvalidToken, http.StatusUnauthorized},
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindStorage, http.StatusInternalServerError},
		{apperr.KindUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.kind); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

// Storage failures must not leak internal detail to the caller.
func TestWriteError_GenericMessageForInternal(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(rec, apperr.Storage("user lookup failed", http.ErrBodyNotAllowed))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "user lookup failed") {
		t.Errorf("internal error detail leaked to the response: %s", rec.Body.String())
	}
}

func TestNotFoundHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest("GET", "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
