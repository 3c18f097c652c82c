package snapio

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedFile means a read would run past the end of the file.
	ErrTruncatedFile = errors.New("truncated file")
	// ErrShapeMismatch means an element's extents differ from the first
	// element's.
	ErrShapeMismatch = errors.New("element shape mismatch")
	// ErrInvalidBlock means an element record or header value cannot
	// describe any valid data, e.g. a zero extent.
	ErrInvalidBlock = errors.New("invalid element block")
)

// DecodeError reports where in a file decoding failed. Err is one of the
// sentinel errors above, possibly wrapped with more detail.
type DecodeError struct {
	Path   string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode failed at byte %d: %s", e.Offset, e.Err)
	}
	return fmt.Sprintf("decode of %s failed at byte %d: %s",
		e.Path, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErrorf(offset int, sentinel error, format string, a ...interface{}) error {
	return &DecodeError{
		Offset: offset,
		Err:    fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, a...)...),
	}
}

// WithPath attaches path to a decode error returned by Decode or
// DecodeMesh. Other errors are returned unchanged.
func WithPath(err error, path string) error {
	var de *DecodeError
	if errors.As(err, &de) && de.Path == "" {
		de.Path = path
	}
	return err
}
