// Package errors provides structured error types for palpiteiro.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP front end
//   - Machine-readable error codes for programmatic handling
//   - A single generic message for end users on fatal failures
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The render pipeline distinguishes four failure classes:
//   - REMOTE_SERVICE: the lineup service failed (transport or logical status)
//   - CONFIG: the position map has no entry for a required plot key
//   - ASSET_DECODE: a player photo is not a decodable image (recovered locally)
//   - ASSET_DOWNLOAD: a photo or emblem download failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfig, "missing plot key %q", key)
//	if errors.Is(err, errors.ErrCodeConfig) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeAssetDownload, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// GenericMessage is shown to end users for every fatal render failure.
const GenericMessage = "Sorry, something went wrong. Please try again later."

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidMode   Code = "INVALID_MODE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidURL    Code = "INVALID_URL"

	// Pipeline errors
	ErrCodeRemoteService Code = "REMOTE_SERVICE"
	ErrCodeConfig        Code = "CONFIG"
	ErrCodeAssetDecode   Code = "ASSET_DECODE"
	ErrCodeAssetDownload Code = "ASSET_DOWNLOAD"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeTimeout  Code = "TIMEOUT"

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
// The outermost *Error decides; inner codes are not consulted.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
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

// PublicMessage returns the text shown to end users for a fatal error.
// Every failure class collapses to [GenericMessage]; details belong in logs.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	return GenericMessage
}

// Fatal reports whether err must abort a render.
// ASSET_DECODE is recovered by composition and is the only non-fatal code.
func Fatal(err error) bool {
	return err != nil && !Is(err, ErrCodeAssetDecode)
}
