// Package errors decorates errors with structured log attributes and the source location where they were
// annotated so that a single log line tells where things went wrong.
//
// It re-exports the standard library helpers so callers only need to import one errors package.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
)

// annotatedError wraps an error with a message, slog attributes, and the source location of the annotation.
type annotatedError struct {
	msg    string
	err    error
	attrs  []slog.Attr
	source string
	stack  string
}

func (e *annotatedError) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// NewSentinel creates a plain error meant to be compared with [Is]. It carries no source location.
func NewSentinel(msg string) error {
	return errors.New(msg) //nolint:err113 // this is the sentinel constructor.
}

// New creates an error annotated with the caller's source location and the given attributes.
func New(msg string, attrs ...slog.Attr) error {
	return annotate(nil, msg, attrs)
}

// Wrap annotates err with msg, the caller's source location, and the given attributes.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return annotate(err, msg, attrs)
}

const callerSkip = 3 // callerSource, annotate, New/Wrap.

func annotate(err error, msg string, attrs []slog.Attr) error {
	return &annotatedError{
		msg:    msg,
		err:    err,
		attrs:  attrs,
		source: callerSource(callerSkip),
		stack:  "",
	}
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// DecoratePanic converts a recovered panic value to an error carrying the goroutine stack.
//
// Call it directly inside the deferred function that calls recover. Returns nil if excp is nil.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	var cause error
	if err, ok := excp.(error); ok {
		cause = err
	} else {
		cause = fmt.Errorf("%v", excp) //nolint:err113 // panic values are dynamic.
	}
	return &annotatedError{
		msg:    "panic",
		err:    cause,
		attrs:  nil,
		source: callerSource(2), //nolint:mnd // callerSource, DecoratePanic.
		stack:  string(debug.Stack()),
	}
}

// SlogError flattens err into an "error" attribute group containing the message, annotations collected from the
// whole wrap chain, and the innermost source location.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}

	var (
		annotations []any
		source      string
		stack       string
	)
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		var ae *annotatedError
		if !errors.As(cur, &ae) {
			break
		}
		for _, attr := range ae.attrs {
			annotations = append(annotations, attr)
		}
		if ae.source != "" {
			source = ae.source
		}
		if ae.stack != "" {
			stack = ae.stack
		}
		cur = ae
	}

	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	if stack != "" {
		attrs = append(attrs, slog.String("stack", stack))
	}
	return slog.Group("error", attrs...)
}

// Is reports whether any error in err's tree matches target. See [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target. See [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err. See [errors.Unwrap].
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join returns an error that wraps the given errors. See [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}
