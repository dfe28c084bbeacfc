package browserprint

import (
	"errors"
	"fmt"
)

// The messages below are shown to users verbatim.
var (
	ErrNoPrinters         = errors.New("No printers available or network error")
	ErrInvalidPrinterData = errors.New("Invalid printer data format")
	ErrNoDefaultPrinter   = errors.New("No default printer found")
)

const unknownError = "Unknown error"

// RetryError is returned when every attempt against a bridge endpoint failed.
// Its message is the last cause's message.
type RetryError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return unknownError
	}
	return e.Err.Error()
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// opError reports a sentinel message while keeping the cause reachable
// through errors.Is and errors.As.
type opError struct {
	kind  error
	cause error
}

func (e *opError) Error() string {
	return e.kind.Error()
}

func (e *opError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func wrapAs(kind, cause error) error {
	return &opError{kind: kind, cause: cause}
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("bridge returned status %d", e.code)
}
