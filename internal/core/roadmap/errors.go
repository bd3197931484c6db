package roadmap

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStepKind = errors.New("unknown step kind")
	ErrMissingField    = errors.New("missing field")
	ErrInvalidField    = errors.New("invalid field")
)

// UnknownStepKindError reports a result element that is neither a road step
// nor a public transport step.
type UnknownStepKindError struct {
	Index int
	Kind  string
}

func (e *UnknownStepKindError) Error() string {
	return fmt.Sprintf("result element %d: unknown step kind %q", e.Index, e.Kind)
}

func (e *UnknownStepKindError) Is(target error) bool { return target == ErrUnknownStepKind }

// MissingFieldError reports a required child or attribute that is absent.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("result element %d: missing field %q", e.Index, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// FieldFormatError reports a field whose text cannot be parsed.
type FieldFormatError struct {
	Index int
	Field string
	Err   error
}

func (e *FieldFormatError) Error() string {
	return fmt.Sprintf("result element %d: field %q: %v", e.Index, e.Field, e.Err)
}

func (e *FieldFormatError) Is(target error) bool { return target == ErrInvalidField }

func (e *FieldFormatError) Unwrap() error { return e.Err }
