package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an application error for transport mapping.
type ErrorCode int

const (
	ErrValidation ErrorCode = iota + 1000
	ErrNotFound
	ErrSlotUnavailable
	ErrRescheduleWindowExpired
	ErrConflict
	ErrTransientStore
	ErrInternal
)

// AppError is the error type returned by every service. The Code carries the
// domain kind so callers can branch without matching on message text.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code so comparisons keep working through wrapping.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

func NewValidation(message string, err error) *AppError {
	return &AppError{Code: ErrValidation, Message: message, Err: err}
}

func NewNotFound(resource string, err error) *AppError {
	return &AppError{Code: ErrNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func NewSlotUnavailable(err error) *AppError {
	return &AppError{Code: ErrSlotUnavailable, Message: "requested slot is not available", Err: err}
}

func NewRescheduleWindowExpired(err error) *AppError {
	return &AppError{Code: ErrRescheduleWindowExpired, Message: "appointment can no longer be rescheduled", Err: err}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{Code: ErrConflict, Message: message, Err: err}
}

func NewTransientStore(err error) *AppError {
	return &AppError{Code: ErrTransientStore, Message: "transient store error", Err: err}
}

func NewInternal(err error) *AppError {
	return &AppError{Code: ErrInternal, Message: "internal server error", Err: err}
}

// CodeOf returns the error code, or ErrInternal for untyped errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
