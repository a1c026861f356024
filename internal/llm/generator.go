// Package llm adapts external text-generation APIs to a single Generator
// interface used by task enrichment.
package llm

import (
	"context"
	"errors"
)

// Generator turns a prompt into raw model text. Callers must not trust the
// shape of the returned text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ErrEmptyResponse is returned when the provider answered without any text.
var ErrEmptyResponse = errors.New("empty generator response")

// TransientError represents a temporary error that may succeed on a later request.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient.
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError represents a permanent error such as a rejected credential.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal.
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient returns true if the error is transient.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal returns true if the error is fatal.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

const (
	ErrorKindTransient = "transient"
	ErrorKindFatal     = "fatal"
)

// ErrorKind classifies a generator error for logs and run records. A
// deadline or cancellation counts as transient; nil and unclassified
// errors yield "".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsFatal(err):
		return ErrorKindFatal
	case IsTransient(err), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrorKindTransient
	}
	return ""
}
