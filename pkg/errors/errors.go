// Package errors gives every failure a Code that decides its HTTP status and
// what the shopper is allowed to see.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"

	// CodeUpstream marks a backend that answered with a server failure.
	CodeUpstream Code = "UPSTREAM_ERROR"
	// CodeUpstreamUnavailable marks a backend that could not be reached at all.
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
)

type Metadata struct {
	HTTPStatus    int
	Retryable     bool
	PublicMessage string
	// DetailsAllowed lets the envelope carry Details (field errors, phases).
	DetailsAllowed bool
	// OwnMessage means the error's message was written for the shopper and
	// replaces PublicMessage in the envelope.
	OwnMessage bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:          {http.StatusBadRequest, false, "validation failed", true, true},
	CodeUnauthorized:        {http.StatusUnauthorized, false, "authentication required", false, true},
	CodeForbidden:           {http.StatusForbidden, false, "access denied", false, true},
	CodeNotFound:            {http.StatusNotFound, false, "resource not found", false, true},
	CodeConflict:            {http.StatusConflict, false, "conflict detected", false, true},
	CodeStateConflict:       {http.StatusUnprocessableEntity, false, "state transition disallowed", true, true},
	CodeRateLimit:           {http.StatusTooManyRequests, false, "rate limit exceeded", false, true},
	CodeInternal:            {http.StatusInternalServerError, true, "internal server error", false, false},
	CodeDependency:          {http.StatusServiceUnavailable, true, "dependency unavailable", true, false},
	CodeUpstream:            {http.StatusBadGateway, true, "upstream service failed", false, true},
	CodeUpstreamUnavailable: {http.StatusServiceUnavailable, true, "upstream service unreachable", false, true},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// PublicMessage is the text the shopper sees for this error.
func (e *Error) PublicMessage() string {
	meta := MetadataFor(e.Code())
	if meta.OwnMessage && e.Message() != "" {
		return e.message
	}
	return meta.PublicMessage
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

// Error omits the cause; Dump walks the chain for logs.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
