package errors

import (
	"fmt"
)

// Error carries an HTTP-like code alongside the message so callers can
// branch on the class of failure without string matching.
type Error interface {
	error

	Code() int
	Message() string
	Cause() error
}

// DefaultCode is used when no enricher sets one. It maps to an internal,
// unclassified failure.
var DefaultCode = 500

type blogError struct {
	code  int
	msg   string
	cause error
}

func (err *blogError) Error() string {
	if err.cause == nil {
		return err.msg
	}
	return fmt.Sprintf("%s: %v", err.msg, err.cause)
}

func (err *blogError) Code() int { return err.code }

func (err *blogError) Message() string { return err.msg }

func (err *blogError) Cause() error { return err.cause }

// ErrorEnricher decorates an error, typically with a code or a cause. Enrichers
// accept plain errors and promote them.
type ErrorEnricher func(error) error

func WithCode(code int) ErrorEnricher {
	return func(err error) error {
		if err == nil {
			return nil
		}
		if bErr, ok := err.(*blogError); ok {
			bErr.code = code
			return bErr
		}
		return &blogError{code: code, msg: err.Error()}
	}
}

func WithCause(cause error) ErrorEnricher {
	return func(err error) error {
		if err == nil {
			return nil
		}

		code := DefaultCode
		if cErr, ok := cause.(Error); ok {
			code = cErr.Code()
		}

		if bErr, ok := err.(*blogError); ok {
			bErr.cause = cause
			return bErr
		}
		return &blogError{code: code, msg: err.Error(), cause: cause}
	}
}

func New(msg string, fs ...ErrorEnricher) error {
	var err error = &blogError{code: DefaultCode, msg: msg}
	for _, f := range fs {
		err = f(err)
	}
	return err
}

// CodeOf extracts the code of an error, falling back to DefaultCode for
// errors that do not carry one.
func CodeOf(err error) int {
	if cErr, ok := err.(Error); ok {
		return cErr.Code()
	}
	return DefaultCode
}
