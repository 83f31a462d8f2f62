package dataset

import (
	"errors"
	"fmt"
)

// ErrDataShape is wrapped by every ShapeError.
var ErrDataShape = errors.New("data shape error")

// ShapeError reports a table or label vector that is inconsistent with what an operation
// expects: ragged rows, label length or value problems, missing columns, unparsable cells.
type ShapeError struct {
	Op     string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Unwrap lets errors.Is(err, ErrDataShape) match.
func (e *ShapeError) Unwrap() error {
	return ErrDataShape
}

func shapeErrorf(op, format string, args ...any) error {
	return &ShapeError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// NewShapeError builds a ShapeError for callers outside this package.
func NewShapeError(op, format string, args ...any) error {
	return shapeErrorf(op, format, args...)
}
