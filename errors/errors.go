/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a state value is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to write a key that already exists
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a guarded write is rejected by the backend
	ErrConditionFailed = errors.New("condition check failed")

	// ErrCounterOverflow is returned when a counter has no headroom for one more increment
	ErrCounterOverflow = errors.New("counter overflow")

	// ErrDuplicateIdentifier is returned when a derived identifier is already registered
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrUnauthenticated is returned when a caller cannot be authenticated
	ErrUnauthenticated = errors.New("authentication failed")

	// ErrUnknownBackend is returned when no backend is registered under a name
	ErrUnknownBackend = errors.New("unknown backend")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// CounterOverflowError reports which counter ran out of headroom.
type CounterOverflowError struct {
	Counter string
	Value   uint64
}

func (e *CounterOverflowError) Error() string {
	return fmt.Sprintf("%s counter overflow: cannot increment %d", e.Counter, e.Value)
}

func (e *CounterOverflowError) Is(target error) bool {
	return target == ErrCounterOverflow
}

// DuplicateIdentifierError carries the colliding identifier in its textual form.
type DuplicateIdentifierError struct {
	ID string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("identifier %s is already registered", e.ID)
}

func (e *DuplicateIdentifierError) Is(target error) bool {
	return target == ErrDuplicateIdentifier
}

// AuthenticationError is raised by authenticators before any registry operation runs.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrUnauthenticated
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewCounterOverflowError creates a new CounterOverflowError
func NewCounterOverflowError(counter string, value uint64) error {
	return &CounterOverflowError{Counter: counter, Value: value}
}

// NewDuplicateIdentifierError creates a new DuplicateIdentifierError
func NewDuplicateIdentifierError(id string) error {
	return &DuplicateIdentifierError{ID: id}
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(reason string, err error) error {
	return &AuthenticationError{Reason: reason, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsCounterOverflow checks if an error is a counter overflow
func IsCounterOverflow(err error) bool {
	return errors.Is(err, ErrCounterOverflow)
}

// IsDuplicateIdentifier checks if an error is an identifier collision
func IsDuplicateIdentifier(err error) bool {
	return errors.Is(err, ErrDuplicateIdentifier)
}

// IsAuthenticationFailure checks if an error is an authentication failure
func IsAuthenticationFailure(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
