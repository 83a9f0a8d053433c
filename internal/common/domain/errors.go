package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a business-rule failure.
type ErrorCode string

const (
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeInvalidTransition   ErrorCode = "INVALID_TRANSITION"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeNoAvailableProvider ErrorCode = "NO_AVAILABLE_PROVIDER"
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeDuplicateEntity     ErrorCode = "DUPLICATE_ENTITY"
	CodeNoOp                ErrorCode = "NO_OP"
)

// DomainError is a business-rule failure that is safe to show to callers.
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError with the same code, so errors.Is(err, ErrNotFound) works.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound            = &DomainError{Code: CodeNotFound}
	ErrInvalidTransition   = &DomainError{Code: CodeInvalidTransition}
	ErrConflict            = &DomainError{Code: CodeConflict}
	ErrNoAvailableProvider = &DomainError{Code: CodeNoAvailableProvider}
	ErrValidation          = &DomainError{Code: CodeValidation}
	ErrDuplicateEntity     = &DomainError{Code: CodeDuplicateEntity}
	ErrNoOp                = &DomainError{Code: CodeNoOp}
)

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

// NewInvalidTransitionError reports a status change that the state machine forbids.
func NewInvalidTransitionError(from, to string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("invalid status transition from '%s' to '%s'", from, to),
	}
}

func NewConflictError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

func NewNoAvailableProviderError(serviceType string) *DomainError {
	return &DomainError{
		Code:    CodeNoAvailableProvider,
		Message: fmt.Sprintf("no available providers for service type '%s'", serviceType),
	}
}

func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// NewDuplicateError reports a uniqueness violation on field.
func NewDuplicateError(entity, field string) *DomainError {
	return &DomainError{
		Code:    CodeDuplicateEntity,
		Message: fmt.Sprintf("%s with this %s already exists", entity, field),
	}
}

func NewNoOpError() *DomainError {
	return &DomainError{Code: CodeNoOp, Message: "no valid updates provided"}
}

// CodeOf returns the code of a wrapped DomainError, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
