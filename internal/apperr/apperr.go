// Package apperr defines the error taxonomy shared by the editor core and its
// surfaces. None of these errors are fatal: each one is either absorbed by a
// fallback or reported to the user as a retryable message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for reporting and recovery.
type Kind string

const (
	KindConfigurationMissing Kind = "configuration_missing"
	KindRemoteUnavailable    Kind = "remote_unavailable"
	KindPatchRejected        Kind = "patch_rejected"
	KindRasterization        Kind = "rasterization_failed"
	KindNotFound             Kind = "not_found"
	KindInvalidInput         Kind = "invalid_input"
	KindBusy                 Kind = "busy"
	KindUnauthorized         Kind = "unauthorized"
	KindInternal             Kind = "internal"
)

// Error is a classified application error.
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Kinded is implemented by domain errors that know their own Kind.
type Kinded interface {
	ErrorKind() Kind
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Retryable: retryable(kind)}
}

// Wrap classifies err under kind with a message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Retryable: retryable(kind), Err: err}
}

// ConfigurationMissing reports an unconfigured collaborator (credential, storage).
func ConfigurationMissing(message string) *Error {
	return New(KindConfigurationMissing, message)
}

// RemoteUnavailable reports a network, timeout, or bad-response failure.
func RemoteUnavailable(message string, err error) *Error {
	return Wrap(KindRemoteUnavailable, message, err)
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Unauthorized reports a missing or unknown access code.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// InvalidInput reports a malformed request.
func InvalidInput(message string, err error) *Error {
	return Wrap(KindInvalidInput, message, err)
}

func retryable(kind Kind) bool {
	switch kind {
	case KindRemoteUnavailable, KindRasterization, KindBusy:
		return true
	default:
		return false
	}
}

// KindOf returns the Kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	var k Kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindInternal
}

// IsRetryable reports whether the user should be prompted to try again.
func IsRetryable(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Retryable
	}
	return retryable(KindOf(err))
}

// HTTPStatus maps an error to the status code the API reports it with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindConfigurationMissing:
		return http.StatusServiceUnavailable
	case KindRemoteUnavailable:
		return http.StatusBadGateway
	case KindPatchRejected, KindInvalidInput:
		return http.StatusBadRequest
	case KindRasterization:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindBusy:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
