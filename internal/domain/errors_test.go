package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorIsErrValidation(t *testing.T) {
	err := fmt.Errorf("capture: %w", NewValidationError("text", "required"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("errors.Is(%v, ErrValidation) = false", err)
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As should find *ValidationError")
	}
	if ve.Errors[0].Field != "text" {
		t.Errorf("field = %q, want text", ve.Errors[0].Field)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	single := NewValidationError("kind", "must be frog or tadpole")
	if got := single.Error(); got != "validation: kind: must be frog or tadpole" {
		t.Errorf("single message = %q", got)
	}

	multi := &ValidationError{Errors: []FieldError{{Field: "a"}, {Field: "b"}}}
	if got := multi.Error(); got != "validation: 2 errors" {
		t.Errorf("multi message = %q", got)
	}
}
