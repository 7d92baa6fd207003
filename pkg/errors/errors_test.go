package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("session start failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("expected errors.Is to unwrap to the original error")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "Court not found",
			},
			expected: "NOT_FOUND: Court not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("connection refused"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "abc123")

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", err.HTTPStatus)
	}
	if err.Details["id"] != "abc123" {
		t.Errorf("expected id detail 'abc123', got %v", err.Details["id"])
	}
}

func TestConflictResource(t *testing.T) {
	err := ConflictResource("equipment", "Insufficient Badminton Racket. Available: 0, Required: 1")

	if err.Code != CodeConflict {
		t.Errorf("expected code %s, got %s", CodeConflict, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status 409, got %d", err.HTTPStatus)
	}
	if err.Details["resource"] != "equipment" {
		t.Errorf("expected resource detail 'equipment', got %v", err.Details["resource"])
	}
	if !IsConflict(err) {
		t.Errorf("expected IsConflict to report true")
	}
}

func TestIsConflict(t *testing.T) {
	if IsConflict(errors.New("plain error")) {
		t.Errorf("plain error should not be a conflict")
	}
	if IsConflict(NotFound("Court")) {
		t.Errorf("not-found should not be a conflict")
	}
	if !IsConflict(Conflict("slot taken")) {
		t.Errorf("conflict should be a conflict")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("busy")
	got, ok := AsAppError(appErr)
	if !ok || got != appErr {
		t.Errorf("expected AsAppError to return the same AppError")
	}

	wrapped := fmt.Errorf("lookup: %w", appErr)
	got, ok = AsAppError(wrapped)
	if !ok || got != appErr {
		t.Errorf("expected AsAppError to unwrap to the AppError")
	}

	if _, ok := AsAppError(errors.New("boom")); ok {
		t.Errorf("expected plain errors not to match")
	}
	if _, ok := AsAppError(nil); ok {
		t.Errorf("expected nil not to match")
	}
}
