package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("loading draft: %w", NotFound("Draft not found"))

	if !errors.Is(err, ErrNotFound) {
		t.Error("Expected wrapped NotFound to match ErrNotFound")
	}
	if errors.Is(err, ErrValidationFailed) {
		t.Error("Expected NotFound not to match ErrValidationFailed")
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("Expected KindNotFound, got %s", KindOf(err))
	}
}

func TestStoreFailureKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := StoreFailure("Failed to save draft", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected cause to be reachable through Unwrap")
	}
	if Message(err, "fallback") != "Failed to save draft" {
		t.Errorf("Expected user message, got %q", Message(err, "fallback"))
	}
}

func TestMessageFallback(t *testing.T) {
	if got := Message(errors.New("raw"), "Internal server error"); got != "Internal server error" {
		t.Errorf("Expected fallback message, got %q", got)
	}
}

func TestKindOfPlainError(t *testing.T) {
	if KindOf(errors.New("x")) != KindUnknown {
		t.Error("Expected KindUnknown for plain errors")
	}
	if KindOf(nil) != KindUnknown {
		t.Error("Expected KindUnknown for nil")
	}
}

func TestHTTPStatusRoundTrip(t *testing.T) {
	testCases := []struct {
		kind   Kind
		status int
	}{
		{KindAuthenticationRequired, http.StatusUnauthorized},
		{KindUnauthorized, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindValidationFailed, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindStoreFailure, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			status := HTTPStatus(tc.kind)
			if status != tc.status {
				t.Fatalf("Expected status %d, got %d", tc.status, status)
			}
			back := FromStatus(status, "msg")
			if back.Kind != tc.kind {
				t.Errorf("Expected kind %s from status %d, got %s", tc.kind, status, back.Kind)
			}
		})
	}
}

func TestFromStatusDefaultsMessage(t *testing.T) {
	err := FromStatus(http.StatusNotFound, "")
	if err.Message != "Not Found" {
		t.Errorf("Expected status text as message, got %q", err.Message)
	}
}

func TestValidationFailedDetails(t *testing.T) {
	err := ValidationFailed("Validation failed", "title too short", "content too short")
	if len(err.Details) != 2 {
		t.Errorf("Expected 2 details, got %d", len(err.Details))
	}
	if err.Error() != "validation_failed: Validation failed" {
		t.Errorf("Unexpected error string %q", err.Error())
	}
}
