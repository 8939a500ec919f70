package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrSerialization is matched by every SerializationError.
	ErrSerialization = errors.New("record cannot be serialized")
	// ErrIO is matched by every IOError.
	ErrIO = errors.New("capture file i/o failed")
)

// SerializationError reports a descriptor whose serialized form does not fit
// the capture format.
type SerializationError struct {
	Index  int
	Length int
	Limit  int
	Err    error
}

func (e *SerializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d: length %d exceeds limit %d", e.Index, e.Length, e.Limit)
}

func (e *SerializationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSerialization, e.Err}
	}
	return []error{ErrSerialization}
}

// IOError reports a filesystem failure on the capture file at Path.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s capture file '%s': %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }
