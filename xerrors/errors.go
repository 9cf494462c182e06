package xerrors

import (
	"fmt"
	"runtime"
)

// Error is the error type raised across the reactor core. It carries a
// Kind, a message, the call site it was created at, and a chain of prior
// errors so a failed connect retry can surface both the latest syscall
// failure and the original reason.
type Error struct {
	kind    Kind
	message string
	frame   runtime.Frame
	parents []error
}

// New creates an Error of the given kind with a parent chain.
func New(kind Kind, message string, parents ...error) *Error {
	return &Error{
		kind:    kind,
		message: message,
		frame:   frame(),
		parents: parents,
	}
}

// Newf formats message like fmt.Sprintf.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
		frame:   frame(),
	}
}

// Wrap annotates err with a message, preserving its kind if err is already
// an *Error, otherwise classifying it as Unknown.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	k := Unknown
	var e *Error
	if As(err, &e) {
		k = e.kind
	}
	return &Error{kind: k, message: message, frame: frame(), parents: []error{err}}
}

// Errno wraps a syscall error with the System kind.
func Errno(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{kind: System, message: message, frame: frame(), parents: []error{err}}
}

func frame() runtime.Frame {
	pc := make([]uintptr, 1)
	if runtime.Callers(3, pc) == 0 {
		return runtime.Frame{}
	}
	f, _ := runtime.CallersFrames(pc).Next()
	return f
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.message == "" {
		return e.kind.String()
	}
	return e.kind.String() + ": " + e.message
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// Unwrap exposes the parent chain for errors.Is/errors.As.
func (e *Error) Unwrap() []error { return e.parents }

// Is reports whether target is an *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind
}

// Trace returns "file:line" for the call site that created the error.
func (e *Error) Trace() string {
	if e.frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", e.frame.File, e.frame.Line)
}

// Is reports whether err's kind (or any ancestor's kind) matches kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !As(err, &e) {
		return false
	}
	if e.kind == kind {
		return true
	}
	for _, p := range e.parents {
		if Is(p, kind) {
			return true
		}
	}
	return false
}

// As is a narrow local copy of errors.As specialised to *Error, avoiding a
// reflect-based walk for the common single-level case while still checking
// the Unwrap() []error chain.
func As(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		switch u := err.(type) {
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		case interface{ Unwrap() []error }:
			for _, p := range u.Unwrap() {
				if As(p, target) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return false
}
