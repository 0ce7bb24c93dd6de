// Package errs defines the user-visible error categories shared by the
// fitting, prediction, and counting commands, built on top of
// github.com/grailbio/base/errors the way the rest of this codebase reports
// fatal conditions.
package errs

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Kind categorizes an error the way a caller or an operator needs to react
// to it, independent of the message text.
type Kind int

const (
	// Other is the zero value: an error that doesn't fit one of the named
	// categories below.
	Other Kind = iota
	// MissingInput means a required file could not be found or opened.
	MissingInput
	// InvalidInput means the request itself is malformed: a negative
	// length, an empty interval, a strand not in {+,-}, a seqname absent
	// from the reference.
	InvalidInput
	// InsufficientData means a model had too little training evidence to
	// learn from (fewer than MinTrainingWindows foreground or background
	// windows). Callers fall back to a no-op model rather than failing.
	InsufficientData
	// IOFailure means a read or write failed partway through a scan. The
	// caller logs it and skips the affected record rather than aborting.
	IOFailure
)

func (k Kind) String() string {
	switch k {
	case MissingInput:
		return "MissingInput"
	case InvalidInput:
		return "InvalidInput"
	case InsufficientData:
		return "InsufficientData"
	case IOFailure:
		return "IOFailure"
	default:
		return "Other"
	}
}

// Error is a categorized error: a Kind plus the wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E constructs a categorized error. The message and cause are formatted
// with github.com/grailbio/base/errors, the way grailbio/bio's
// encoding/fasta and markduplicates packages report fatal conditions; the
// Kind is carried on the outer *Error so callers can recover it with
// KindOf without needing to know how grailbio/base/errors wraps things.
func E(kind Kind, msg string, cause error) error {
	var wrapped error
	if cause != nil {
		wrapped = errors.E(cause, msg)
	} else {
		wrapped = errors.E(msg)
	}
	return &Error{Kind: kind, Msg: msg, Err: wrapped}
}

// KindOf unwraps err looking for an *Error and returns its Kind, or Other if
// none is found.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return Other
}

// IsFatal reports whether kind should abort the whole run rather than
// being logged and skipped. MissingInput and InvalidInput are fatal;
// IOFailure and InsufficientData are not.
func IsFatal(kind Kind) bool {
	return kind == MissingInput || kind == InvalidInput
}
