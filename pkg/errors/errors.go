// Package errors provides structured error types for the inkpath converter.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Format errors follow the failure taxonomy of the .rm binary grammar:
// document-wide errors (BAD_MAGIC, TRUNCATED, UNSUPPORTED_VERSION,
// INVALID_TREE) abort a conversion, while per-object errors (CORRUPT_STROKE)
// are recovered locally and logged.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeBadMagic, "not a reMarkable .lines file")
//	if errors.Is(err, errors.ErrCodeBadMagic) {
//	    // Handle unrecognized input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "render %s", format)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Format errors (reading .rm input)
	ErrCodeBadMagic           Code = "BAD_MAGIC"
	ErrCodeTruncated          Code = "TRUNCATED"
	ErrCodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"
	ErrCodeInvalidTree        Code = "INVALID_TREE"
	ErrCodeCorruptStroke      Code = "CORRUPT_STROKE"
	ErrCodeCorruptBlock       Code = "CORRUPT_BLOCK"

	// Encode errors (writing .rm output)
	ErrCodePayloadTooLarge Code = "PAYLOAD_TOO_LARGE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	if code == ErrCodeTruncated {
		var t *TruncatedError
		return errors.As(err, &t)
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not a coded error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var t *TruncatedError
	if errors.As(err, &t) {
		return ErrCodeTruncated
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// TruncatedError reports input that ended mid-block, with the byte offset at
// which the stream became unreadable.
type TruncatedError struct {
	Offset int64 // Byte offset of the incomplete block or header
}

// Error implements the error interface.
func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%s: input truncated at offset %d", ErrCodeTruncated, e.Offset)
}

// Code returns the error code for this error type.
func (e *TruncatedError) Code() Code {
	return ErrCodeTruncated
}

// Truncated creates a TruncatedError at the given byte offset.
func Truncated(offset int64) *TruncatedError {
	return &TruncatedError{Offset: offset}
}

// IsTruncated reports whether err is a truncation error, returning the byte
// offset when it is.
func IsTruncated(err error) (int64, bool) {
	var e *TruncatedError
	if errors.As(err, &e) {
		return e.Offset, true
	}
	return 0, false
}
