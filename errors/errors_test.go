package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeInternal, "boom")
	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if err.Message != "boom" {
		t.Errorf("expected message 'boom', got %q", err.Message)
	}
	if err.Error() != "INTERNAL_ERROR: boom" {
		t.Errorf("unexpected error string %q", err.Error())
	}
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	err := ConstructionFailure("*app.Engine", fmt.Errorf("no fuel"))
	if !strings.Contains(err.Error(), "(cause: no fuel)") {
		t.Errorf("expected cause in error string, got %q", err.Error())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root")
	err := PostConstructFailure("audit", "*app.Car", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAppError_IsMatchesSentinelByCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel *AppError
	}{
		{"conflict", RegistrationConflict("type", "*app.Engine"), ErrRegistrationConflict},
		{"ambiguous", AmbiguousCandidate(2, "app.Service"), ErrAmbiguousCandidate},
		{"circular", CircularDependency([]string{"A", "B", "A"}), ErrCircularDependency},
		{"unsatisfied", UnsatisfiedDependency("name", "engine"), ErrUnsatisfiedDependency},
		{"construction", ConstructionFailure("A", nil), ErrConstructionFailure},
		{"post construct", PostConstructFailure("h", "A", nil), ErrPostConstructFailure},
		{"invalid unit", InvalidUnit("A", "no factory"), ErrInvalidUnit},
		{"invalid config", InvalidConfig(nil), ErrInvalidConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !stderrors.Is(tc.err, tc.sentinel) {
				t.Errorf("expected %v to match sentinel %s", tc.err, tc.sentinel.Code)
			}
			if stderrors.Is(tc.err, ErrValidation) {
				t.Error("did not expect a match against an unrelated code")
			}
		})
	}
}

func TestAppError_IsThroughWrapping(t *testing.T) {
	inner := CircularDependency([]string{"A", "B", "A"})
	outer := fmt.Errorf("registering A: %w", inner)
	if !stderrors.Is(outer, ErrCircularDependency) {
		t.Error("expected wrapped error to match sentinel")
	}
}

func TestAmbiguousCandidate_Details(t *testing.T) {
	err := AmbiguousCandidate(3, "app.Service")
	if err.Details["count"] != 3 {
		t.Errorf("expected count=3, got %v", err.Details["count"])
	}
	if err.Details["type"] != "app.Service" {
		t.Errorf("expected type=app.Service, got %v", err.Details["type"])
	}
	if !strings.Contains(err.Message, "found 3") {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestCircularDependency_CopiesChain(t *testing.T) {
	chain := []string{"A", "B", "A"}
	err := CircularDependency(chain)
	chain[0] = "mutated"

	got, ok := Chain(err)
	if !ok {
		t.Fatal("expected chain to be present")
	}
	if got[0] != "A" {
		t.Errorf("expected chain to be copied, got %v", got)
	}
	if !strings.Contains(err.Message, "A -> B -> A") {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestCount(t *testing.T) {
	wrapped := ConstructionFailure("Car", AmbiguousCandidate(2, "Engine"))
	n, ok := Count(wrapped)
	if !ok || n != 2 {
		t.Errorf("expected count 2 from nested error, got %d (ok=%v)", n, ok)
	}

	if _, ok := Count(fmt.Errorf("plain")); ok {
		t.Error("expected no count for a plain error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", PostConstructFailure("h", "A", UnsatisfiedDependency("type", "B")))
	if !HasCode(err, ErrCodePostConstructFailure) {
		t.Error("expected outer code")
	}
	if !HasCode(err, ErrCodeUnsatisfiedDependency) {
		t.Error("expected nested code")
	}
	if HasCode(err, ErrCodeInternal) {
		t.Error("did not expect INTERNAL_ERROR")
	}
	if HasCode(nil, ErrCodeInternal) {
		t.Error("did not expect a code on nil")
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := New(ErrCodeInternal, "x").
		WithDetail("a", 1).
		WithDetails(map[string]any{"b": 2})
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("unexpected details %v", err.Details)
	}
	cause := fmt.Errorf("c")
	if err.WithCause(cause).Cause != cause {
		t.Error("expected cause to be set")
	}
}

func TestAsAppError(t *testing.T) {
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("plain error is not an AppError")
	}
	appErr, ok := AsAppError(fmt.Errorf("wrap: %w", Internal(nil)))
	if !ok || appErr.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %v", appErr)
	}
	if !IsAppError(Validation("bad")) {
		t.Error("expected IsAppError to be true")
	}
}
