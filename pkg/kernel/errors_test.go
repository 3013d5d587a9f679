package kernel

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		err   *Error
		check func(error) bool
		class ErrorClass
	}{
		{NewValidationError("bad input", nil), IsValidation, ErrorClassValidation},
		{NewPreconditionError("no sketch", nil), IsPrecondition, ErrorClassPrecondition},
		{NewConfigurationError("unknown tool", nil), IsConfiguration, ErrorClassConfiguration},
		{NewUnsupportedError("no revolve", nil), IsUnsupported, ErrorClassUnsupported},
		{NewKernelError("non-manifold result", nil), IsKernel, ErrorClassKernel},
	}
	for _, tc := range cases {
		if tc.err.Class != tc.class {
			t.Errorf("Expected class %s, got %s", tc.class, tc.err.Class)
		}
		if !tc.check(tc.err) {
			t.Errorf("Expected Is helper to match %s", tc.class)
		}
	}
	if IsKernel(NewValidationError("x", nil)) {
		t.Error("Expected IsKernel to reject a validation error")
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("division by zero")
	err := NewKernelError("boolean failed", cause).WithOp(OpCut).WithEngine("solid")

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the wrapped cause")
	}
	if IsKernel(fmt.Errorf("outer: %w", err)) != true {
		t.Error("Expected classification to survive wrapping")
	}

	msg := err.Error()
	for _, want := range []string{"kernel", "boolean failed", "op=Cut", "engine=solid", "division by zero"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected message to contain %q, got %q", want, msg)
		}
	}
}

func TestErrorIsMatchesOnClass(t *testing.T) {
	a := NewPreconditionError("extrude with no sketch", nil)
	b := NewPreconditionError("different message", nil)
	if !errors.Is(a, b) {
		t.Error("Expected same-class errors to match via errors.Is")
	}
	if errors.Is(a, NewKernelError("x", nil)) {
		t.Error("Expected different classes not to match")
	}
}
