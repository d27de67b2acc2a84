package construct

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated means the buffer ended before the field did.
	ErrTruncated = errors.New("buffer truncated")
	// ErrConstMismatch means a Const field did not match its expected bytes.
	ErrConstMismatch = errors.New("const mismatch")
	// ErrBadReference means a field referred to a sibling that has not
	// been parsed, or whose value is not usable in that position.
	ErrBadReference = errors.New("bad field reference")
	// ErrNoBranch means a Switch had no case for the discriminant value
	// and no default branch.
	ErrNoBranch = errors.New("no branch taken")
	// ErrBadValue means a value handed to Build cannot be encoded by the
	// field that is supposed to carry it.
	ErrBadValue = errors.New("value does not fit field")
)

// Error wraps a parse failure with the field name and the cursor position
// at which the field started.
type Error struct {
	Field  string
	Offset int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("field %q at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// fieldErr attaches field/offset context once; errors already carrying it
// pass through so the innermost field is the one reported. Parse and Build
// both use it; the offset is the cursor position the field started at.
func fieldErr(name string, offset int, err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Field: name, Offset: offset, Err: err}
}
