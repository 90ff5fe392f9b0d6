package browser

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Error kinds returned by the browser. Every failure matches exactly one of them
// via errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrPermission     = errors.New("permission denied")
	ErrInvalidName    = errors.New("invalid name")
	ErrPartialFailure = errors.New("partial failure")
	ErrIO             = errors.New("i/o error")
)

// OpError records the operation, the offending path and the kind of a failure.
// Err is the underlying cause (usually an *fs.PathError) and may be nil.
type OpError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// PartialFailureError is returned by Delete when some, but not all, of the
// targeted paths were removed. Remaining lists every path still present.
type PartialFailureError struct {
	Path      string
	Remaining []string
	Err       error
}

func (e *PartialFailureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "delete %s: %v: %d path(s) remain", e.Path, ErrPartialFailure, len(e.Remaining))
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *PartialFailureError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPartialFailure}
	}
	return []error{ErrPartialFailure, e.Err}
}

// KindOf returns the kind sentinel matched by err, or nil for a nil error.
// Errors that carry no kind are reported as ErrIO.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range []error{ErrPartialFailure, ErrNotFound, ErrAlreadyExists, ErrPermission, ErrInvalidName, ErrIO} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrIO
}

// classify wraps a raw filesystem error into an *OpError with the matching kind.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return err
	}
	var pf *PartialFailureError
	if errors.As(err, &pf) {
		return err
	}
	kind := ErrIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrExist):
		kind = ErrAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermission
	}
	return &OpError{Op: op, Path: path, Kind: kind, Err: err}
}

func opErr(op, path string, kind error) error {
	return &OpError{Op: op, Path: path, Kind: kind}
}
