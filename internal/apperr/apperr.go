package apperr

import (
	"errors"
	"fmt"
)

// Code classifies an error for the HTTP layer and for retry decisions.
type Code string

const (
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeInvalidState Code = "invalid_state"
	CodeValidation   Code = "validation"
	CodeDependency   Code = "dependency"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// CodeOf returns the code of err, or an empty Code for uncoded errors.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
