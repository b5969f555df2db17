package server

import (
	"errors"
	"fmt"
)

type ErrorCode uint

const (
	ErrUnknown ErrorCode = iota
	ErrBadParamInput
	ErrNotFound
	ErrInternalServerError
	ErrInvalidCoordinates
	ErrEmptyRouteData
	ErrNoPathFound
	ErrScorerUnavailable
	ErrModeTransitionFailed
)

// Error wraps an origin error with an application error code and a
// user-level message.
type Error struct {
	orig error
	msg  string
	code ErrorCode
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() ErrorCode {
	return e.code
}

func WrapErrorf(orig error, code ErrorCode, format string, a ...interface{}) error {
	return &Error{
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
		code: code,
	}
}

func NewErrorf(code ErrorCode, format string, a ...interface{}) error {
	return WrapErrorf(nil, code, format, a...)
}

// GetCode extracts the ErrorCode from err, ErrUnknown when err does not
// carry one.
func GetCode(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return ErrUnknown
}
