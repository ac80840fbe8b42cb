package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies failures by how far they are allowed to propagate.
type ErrorKind string

const (
	// KindConfig aborts the run before any job executes
	KindConfig = ErrorKind("config")
	// KindProcess marks a spawn failure or abnormal exit
	KindProcess = ErrorKind("process")
	// KindTimeout marks a process that exceeded its bound
	KindTimeout = ErrorKind("timeout")
	// KindParse marks output that could not be turned into metrics
	KindParse = ErrorKind("parse")
	// KindSink marks a destination that failed to write
	KindSink = ErrorKind("sink")
)

// Error carries an ErrorKind alongside the underlying failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Cause lets errors.Cause walk through typed errors.
func (e *Error) Cause() error { return e.Err }

func newError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// ConfigError marks err as fatal to the whole run.
func ConfigError(err error) error { return newError(KindConfig, err) }

// ProcessError marks err as a failed process execution.
func ProcessError(err error) error { return newError(KindProcess, err) }

// TimeoutError marks err as a process that ran out of time.
func TimeoutError(err error) error { return newError(KindTimeout, err) }

// ParseError marks err as a per-job extraction failure.
func ParseError(err error) error { return newError(KindParse, err) }

// SinkError marks err as a single destination failure.
func SinkError(err error) error { return newError(KindSink, err) }

// ParseErrorf builds a ParseError from a format string.
func ParseErrorf(format string, args ...interface{}) error {
	return ParseError(errors.Errorf(format, args...))
}

// ConfigErrorf builds a ConfigError from a format string.
func ConfigErrorf(format string, args ...interface{}) error {
	return ConfigError(errors.Errorf(format, args...))
}

// IsKind reports whether any error in err's chain has the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var typed *Error
	for err != nil {
		if !errors.As(err, &typed) {
			return false
		}
		if typed.Kind == kind {
			return true
		}
		err = typed.Err
	}
	return false
}
