package note

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityResolution means a path cannot be mapped to a location
	// inside the repository.
	ErrIdentityResolution = errors.New("path is not inside the repository")

	// ErrOutOfRange means a line is beyond the current content.
	ErrOutOfRange = errors.New("line out of range")

	// ErrDuplicateAnchor means a valid note already exists at the target line.
	ErrDuplicateAnchor = errors.New("note already exists at line")

	// ErrNotFound means no valid note exists at the target line.
	ErrNotFound = errors.New("no note at line")

	// ErrContentUnavailable means the version store cannot produce content
	// for a content address.
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrStorage wraps I/O and serialization failures of annotation records.
	ErrStorage = errors.New("note storage failure")

	// ErrNoRecord is returned by a RecordStore when nothing is stored for
	// an identity. Repository.Load turns it into a fresh record.
	ErrNoRecord = errors.New("no record stored")
)

// OutOfRangeError reports a line beyond the end of a file.
type OutOfRangeError struct {
	Path  string
	Line  int // zero-based
	Lines int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("line %d is beyond the end of %s (%d lines)", e.Line+1, e.Path, e.Lines)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }
