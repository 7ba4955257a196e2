package pmf

import (
	"errors"
	"fmt"
)

// Structural failures. They reach callers wrapped in an *ArchiveError.
var (
	ErrOpen                = errors.New("pmf: archive cannot be opened")
	ErrMissingDescriptor   = errors.New("pmf: archive has no model descriptor")
	ErrMalformedDescriptor = errors.New("pmf: model descriptor is malformed")
	ErrPack                = errors.New("pmf: archive cannot be finalized")
	ErrModelTypeMismatch   = errors.New("pmf: archive holds a different model type")
)

// ArchiveError reports a failure that aborted a whole read or write.
type ArchiveError struct {
	Op   string
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("pmf: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

func archiveError(op, path string, sentinel, cause error) *ArchiveError {
	err := sentinel
	if cause != nil {
		err = errors.Join(sentinel, cause)
	}
	return &ArchiveError{Op: op, Path: path, Err: err}
}
