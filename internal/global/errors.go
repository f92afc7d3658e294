package global

import (
	"errors"
	"fmt"
)

// Error kinds, matched with errors.Is
var (
	ErrValidation  = errors.New("validation failed")
	ErrIO          = errors.New("i/o failure")
	ErrCorruptData = errors.New("corrupt data")
	ErrFormat      = errors.New("archive format violation")
	ErrUnknown     = errors.New("unknown error")
	ErrCancelled   = errors.New("run cancelled")
)

// Wraps cause as a stage error of the given kind
func NewStageError(stage string, kind error, cause error) (err error) {
	err = &StageError{Stage: stage, Kind: kind, Err: cause}
	return
}

// Shorthand for validation failures raised before any pipeline stage starts
func Invalid(format string, vars ...any) (err error) {
	err = fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, vars...))
	return
}

// Reports the most specific kind carried by err (ErrUnknown when none match)
func KindOf(err error) (kind error) {
	for _, candidate := range []error{ErrCancelled, ErrValidation, ErrCorruptData, ErrFormat, ErrIO, ErrUnknown} {
		if errors.Is(err, candidate) {
			kind = candidate
			return
		}
	}
	kind = ErrUnknown
	return
}
