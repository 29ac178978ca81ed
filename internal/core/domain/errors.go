package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFormat indicates a binary did not match its expected layout.
	// Processing of that file is aborted.
	ErrFormat = errors.New("format error")

	// ErrEncoding indicates text could not be converted to script bytes.
	ErrEncoding = errors.New("encoding error")

	// ErrCapacity indicates text did not fit its fixed-length slot and was truncated.
	ErrCapacity = errors.New("capacity exceeded")

	// ErrPoolExhausted indicates no free area could hold an entry.
	// The translation must be shortened.
	ErrPoolExhausted = errors.New("pool exhausted")

	// ErrPointerRange indicates a relocated address does not fit its pointer field.
	ErrPointerRange = errors.New("pointer out of range")

	// ErrProcess indicates an external collaborator exited abnormally.
	ErrProcess = errors.New("external process failed")
)

// FormatError describes an archive or script file that does not match its layout.
type FormatError struct {
	Path   string
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("format error at 0x%X: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("format error in %s at 0x%X: %s", e.Path, e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// EncodingError reports a tag or character no resolution tier recognised.
type EncodingError struct {
	EntryID int
	Tag     string
	Char    rune
}

func (e *EncodingError) Error() string {
	what := fmt.Sprintf("tag <%s>", e.Tag)
	if e.Tag == "" {
		what = fmt.Sprintf("character %q", e.Char)
	}
	if e.EntryID > 0 {
		return fmt.Sprintf("entry %d: cannot encode %s", e.EntryID, what)
	}
	return fmt.Sprintf("cannot encode %s", what)
}

func (e *EncodingError) Unwrap() error { return ErrEncoding }

// CapacityError is a recoverable diagnostic: the entry was truncated to fit.
type CapacityError struct {
	EntryID int
	Offset  int
	Need    int
	Have    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("entry %d: %d bytes do not fit slot of %d at 0x%X, truncated",
		e.EntryID, e.Need, e.Have, e.Offset)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

// PoolExhaustedError reports the entry that no pool could hold.
type PoolExhaustedError struct {
	EntryID   int
	Length    int
	Remaining []int
}

func (e *PoolExhaustedError) Error() string {
	return fmt.Sprintf("entry %d: no pool holds %d bytes (remaining %v)", e.EntryID, e.Length, e.Remaining)
}

func (e *PoolExhaustedError) Unwrap() error { return ErrPoolExhausted }

// ProcessError represents a collaborator invocation that failed for one file.
type ProcessError struct {
	Tool   string
	File   string
	Output string
	Err    error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s failed on %s", e.Tool, e.File)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += " (" + e.Output + ")"
	}
	return msg
}

func (e *ProcessError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProcess}
	}
	return []error{ErrProcess, e.Err}
}

// IsFormat checks if the error is a FormatError.
func IsFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsCapacity checks if the error is a recoverable CapacityError.
func IsCapacity(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}

// IsPoolExhausted checks if the error is a PoolExhaustedError.
func IsPoolExhausted(err error) bool {
	var pe *PoolExhaustedError
	return errors.As(err, &pe)
}
