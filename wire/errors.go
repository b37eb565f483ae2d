package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the runtime codec paths. They are wrapped with field
// context and remain matchable with errors.Is.
var (
	// ErrBinaryTooShort reports a binary-typed value with fewer bytes than
	// its declared size.
	ErrBinaryTooShort = errors.New("binary value shorter than declared size")

	// ErrMissingValue reports an empty slot on a non-conditional field with
	// no declared default.
	ErrMissingValue = errors.New("missing value")

	// ErrConstantMismatch reports wire bits that differ from a constant
	// field's declared default.
	ErrConstantMismatch = errors.New("constant mismatch")

	// ErrShortInput reports fewer input bits than the next field demands.
	ErrShortInput = errors.New("short input")
)

// FieldError represents an encoding/decoding error with a field path.
type FieldError struct {
	FieldPath []string // e.g., ["header", "flags"]
	Err       error    // underlying error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.FieldPath) == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("error at field %s: %v", strings.Join(e.FieldPath, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for compatibility.
func (e *FieldError) Is(target error) bool {
	_, ok := target.(*FieldError)
	return ok
}

// wrapWithField wraps an error with a field name
func wrapWithField(err error, fieldName string) error {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{
			FieldPath: append([]string{fieldName}, fe.FieldPath...),
			Err:       fe.Err,
		}
	}

	return &FieldError{
		FieldPath: []string{fieldName},
		Err:       err,
	}
}
