package wps

import (
	"errors"
	"fmt"
)

// ErrBackend matches every error that originates from the routing backend
// rather than from the caller.
var ErrBackend = errors.New("routing backend error")

// ExceptionError is an OWS ExceptionReport returned by the backend.
type ExceptionError struct {
	Service string
	Code    string
	Text    string
}

func (e *ExceptionError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("wps %s: %s", e.Service, e.Code)
	}
	return fmt.Sprintf("wps %s: %s: %s", e.Service, e.Code, e.Text)
}

func (e *ExceptionError) Is(target error) bool { return target == ErrBackend }

// StatusError is a non-200 HTTP reply that carries no exception report.
type StatusError struct {
	Service    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wps %s: unexpected status code %d", e.Service, e.StatusCode)
}

func (e *StatusError) Is(target error) bool { return target == ErrBackend }

// ProtocolError is a reply that does not follow the expected envelope.
type ProtocolError struct {
	Service string
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wps %s: malformed response: %v", e.Service, e.Err)
}

func (e *ProtocolError) Is(target error) bool { return target == ErrBackend }

func (e *ProtocolError) Unwrap() error { return e.Err }

// missingOutput reports an expected output absent from a response.
func missingOutput(service, output string) error {
	return &ProtocolError{Service: service, Err: fmt.Errorf("missing output %q", output)}
}
