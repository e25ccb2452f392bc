// persist/errors.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package persist

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by errors.Is for any problem with the contents
	// of a scene file.
	ErrFormat = errors.New("Invalid scene file")
	// ErrIO is matched by errors.Is for failures reading or writing the
	// underlying file or object.
	ErrIO = errors.New("Scene I/O failed")

	ErrMissingHeader = errors.New("Missing header line")
	ErrUnknownKind   = errors.New("Unknown entity kind")
	ErrMissingField  = errors.New("Missing field")
	ErrInvalidColor  = errors.New("Invalid color")
	ErrInvalidWidth  = errors.New("Width must be positive")
	ErrTooFewPoints  = errors.New("Place needs at least three points")
	ErrBadPointIndex = errors.New("Point index out of range")
	ErrVersion       = errors.New("Unsupported snapshot version")
)

// FormatError reports malformed content. Line is the 1-based line of a
// text file where the problem was found, or 0 if it isn't associated with
// a line.
type FormatError struct {
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return ErrFormat.Error() + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s: line %d: %v", ErrFormat, e.Line, e.Err)
}

func (e *FormatError) Unwrap() []error {
	return []error{ErrFormat, e.Err}
}

func formatErrorf(line int, f string, args ...any) *FormatError {
	return &FormatError{Line: line, Err: fmt.Errorf(f, args...)}
}

// IOError reports a failure of the underlying storage.
type IOError struct {
	Op   string // "open" or "save"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}
