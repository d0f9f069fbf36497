package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorRateLimited  ErrorCode = "RATE_LIMITED"
	ErrorUpstream     ErrorCode = "UPSTREAM_ERROR"
	ErrorInternal     ErrorCode = "INTERNAL_ERROR"
)

// publicMessages are returned to callers when upstream error text is hidden.
var publicMessages = map[ErrorCode]string{
	ErrorInvalidInput: "invalid request",
	ErrorRateLimited:  "model provider rate limit exceeded",
	ErrorUpstream:     "model provider request failed",
	ErrorInternal:     "internal error",
}

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Detail is the underlying failure text, without the classification prefix.
func (e *Error) Detail() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Reason
	}
	return e.Err.Error()
}

// PublicMessage is a generic description safe to show to any caller.
func (e *Error) PublicMessage() string {
	if e == nil {
		return ""
	}
	if msg, ok := publicMessages[e.Code]; ok {
		return msg
	}
	return publicMessages[ErrorInternal]
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// NewInvalidInputError classifies a request the transport could not decode.
func NewInvalidInputError(reason string, err error) *Error {
	return newError(ErrorInvalidInput, reason, err)
}
