/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("Entity", "0x01")

	// Test error message
	expected := `Entity with key "0x01" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	// Test Is method
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	// Test helper function
	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("OwnedEntity", "alice")

	// Test error message
	expected := `OwnedEntity with key "alice" already exists`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	// Test Is method
	if !errors.Is(err, ErrAlreadyExists) {
		t.Error("AlreadyExistsError should match ErrAlreadyExists")
	}

	// Test helper function
	if !IsAlreadyExists(err) {
		t.Error("IsAlreadyExists should return true for AlreadyExistsError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "seed",
			message:  "must not be empty",
			expected: `validation failed for field "seed": must not be empty`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "missing required fields",
			expected: "validation failed: missing required fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !errors.Is(err, ErrInvalidInput) {
				t.Error("ValidationError should match ErrInvalidInput")
			}

			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestConditionFailedError(t *testing.T) {
	err := NewConditionFailedError("apply", "attribute_not_exists(PK)")

	// Test error message
	expected := "condition check failed for apply operation: attribute_not_exists(PK)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	// Test Is method
	if !errors.Is(err, ErrConditionFailed) {
		t.Error("ConditionFailedError should match ErrConditionFailed")
	}

	// Test helper function
	if !IsConditionFailed(err) {
		t.Error("IsConditionFailed should return true for ConditionFailedError")
	}
}

func TestErrorWrapping(t *testing.T) {
	// Test that wrapped errors still match
	original := NewNotFoundError("Entity", "0x01")
	wrapped := fmt.Errorf("database operation failed: %w", original)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("Wrapped NotFoundError should still match ErrNotFound")
	}

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should work with wrapped errors")
	}
}

func TestSentinelErrors(t *testing.T) {
	// Ensure sentinel errors are distinct
	sentinels := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrConditionFailed,
		ErrCounterOverflow,
		ErrDuplicateIdentifier,
		ErrUnauthenticated,
		ErrUnknownBackend,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}

func TestCounterOverflowError(t *testing.T) {
	err := NewCounterOverflowError("count", 18446744073709551615)

	expected := "count counter overflow: cannot increment 18446744073709551615"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !IsCounterOverflow(fmt.Errorf("create: %w", err)) {
		t.Error("IsCounterOverflow should see through wrapping")
	}
	if IsDuplicateIdentifier(err) {
		t.Error("CounterOverflowError must not match ErrDuplicateIdentifier")
	}
}

func TestDuplicateIdentifierError(t *testing.T) {
	err := NewDuplicateIdentifierError("0xabcd")

	expected := "identifier 0xabcd is already registered"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrDuplicateIdentifier) {
		t.Error("DuplicateIdentifierError should match ErrDuplicateIdentifier")
	}
}

func TestAuthenticationError(t *testing.T) {
	cause := errors.New("token is expired")
	err := NewAuthenticationError("invalid token", cause)

	if !IsAuthenticationFailure(err) {
		t.Error("IsAuthenticationFailure should return true for AuthenticationError")
	}
	if !errors.Is(err, cause) {
		t.Error("AuthenticationError should unwrap to its cause")
	}

	bare := NewAuthenticationError("missing bearer token", nil)
	if bare.Error() != "authentication failed: missing bearer token" {
		t.Errorf("unexpected message %q", bare.Error())
	}
}
