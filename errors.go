// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"errors"
	"fmt"
	"sync"

	"go4.org/mem"
)

// Errors reported by the mutation API and the printer.
var (
	ErrInvalidNode       = errors.New("invalid node")
	ErrNotArray          = errors.New("value is not an array")
	ErrNotObject         = errors.New("value is not an object")
	ErrWrongKind         = errors.New("value has the wrong kind")
	ErrEmptyKey          = errors.New("object key is empty")
	ErrSelfInsert        = errors.New("value cannot contain itself")
	ErrHasParent         = errors.New("value already belongs to a container")
	ErrForeignNode       = errors.New("value belongs to a different document")
	ErrReference         = errors.New("cannot modify a value through a reference")
	ErrIndexRange        = errors.New("index out of range")
	ErrKeyNotFound       = errors.New("key not found")
	ErrDanglingReference = errors.New("reference target has been deleted")
	ErrEmptyRaw          = errors.New("raw value is empty")
	ErrCapacity          = errors.New("output exceeds buffer capacity")
)

// Errors wrapped by a *SyntaxError to classify parse failures that are not
// caused by malformed input.
var (
	// ErrDepthLimit is reported when arrays and objects are nested more deeply
	// than the parser permits.
	ErrDepthLimit = errors.New("nesting depth limit exceeded")

	// ErrTrailingData is reported when a NUL terminator is required after the
	// value, but something else was found.
	ErrTrailingData = errors.New("missing NUL terminator after value")

	// ErrLengthRange is reported when the length given to ParseWithLength is
	// outside the bounds of the input.
	ErrLengthRange = errors.New("length out of range")
)

func kindError(want, got Kind) error {
	switch want {
	case Array:
		return fmt.Errorf("%w (got %v)", ErrNotArray, got)
	case Object:
		return fmt.Errorf("%w (got %v)", ErrNotObject, got)
	default:
		return fmt.Errorf("%w: got %v, want %v", ErrWrongKind, got, want)
	}
}

func keyError(key string) error { return fmt.Errorf("%w: %q", ErrKeyNotFound, key) }

// SyntaxError is the concrete type of errors reported by the parser.
type SyntaxError struct {
	Offset   int     // the byte offset where parsing could not proceed
	Location LineCol // the line and column corresponding to Offset
	Message  string

	rest string // the input from Offset to the end of the usable input
	err  error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s (offset %d): %s", s.Location, s.Offset, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// Remainder returns the portion of the input starting at the offset where
// parsing failed.
func (s *SyntaxError) Remainder() string { return s.rest }

// newSyntaxError constructs a syntax error for a failure at offset pos of in,
// whose usable length is length. The offset is clamped to the last usable
// byte of the input.
func newSyntaxError(in mem.RO, length, pos int, err error, msg string, args ...any) *SyntaxError {
	if pos >= length && length > 0 {
		pos = length - 1
	}
	rest := ""
	if pos < in.Len() {
		rest = in.SliceFrom(pos).StringCopy()
	}
	return &SyntaxError{
		Offset:   pos,
		Location: lineColAt(in, pos),
		Message:  fmt.Sprintf(msg, args...),
		rest:     rest,
		err:      err,
	}
}

// lastError records the remainder of the input from the most recent parse
// failure, for diagnostics.
var lastError struct {
	sync.Mutex
	rest string
	ok   bool
}

func setLastError(err error) {
	lastError.Lock()
	defer lastError.Unlock()
	if serr, ok := err.(*SyntaxError); ok {
		lastError.rest, lastError.ok = serr.rest, true
	} else {
		lastError.rest, lastError.ok = "", false
	}
}

// LastError reports the remainder of the input from the offset where the most
// recent call to a Parse function failed. If the most recent parse succeeded,
// it returns "", false.
//
// The result is shared by all goroutines in the process, and concurrent parses
// overwrite each other; it is meant for diagnostics only. Prefer the
// *SyntaxError returned by the parser, which carries the same information.
func LastError() (string, bool) {
	lastError.Lock()
	defer lastError.Unlock()
	return lastError.rest, lastError.ok
}
