package wcx

import (
	"errors"
	"fmt"
)

// Sentinel errors for component operations.
var (
	ErrNotFound          = errors.New("wcx: component not found")
	ErrConfiguration     = errors.New("wcx: configuration error")
	ErrMalformedBehavior = errors.New("wcx: malformed behavior")
	ErrTransport         = errors.New("wcx: transport error")
	ErrInvalidRecord     = errors.New("wcx: invalid component record")
	ErrInvalidName       = errors.New("wcx: invalid custom element name")
	ErrNotPortable       = errors.New("wcx: behavior has no script equivalent")
)

// NotFoundError reports an export or lookup for a name absent from the store.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("wcx: component %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// MalformedBehaviorError reports template or method source that fails to
// compile. Field is "template" or "methods.<name>".
type MalformedBehaviorError struct {
	Field string
	Err   error
}

func (e *MalformedBehaviorError) Error() string {
	return fmt.Sprintf("wcx: malformed %s: %v", e.Field, e.Err)
}

func (e *MalformedBehaviorError) Unwrap() []error {
	return []error{ErrMalformedBehavior, e.Err}
}

// TransportError reports a failed request to a remote collaborator.
// Status is zero when no response was received.
type TransportError struct {
	Method string
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("wcx: %s %s: status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("wcx: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConfiguration checks if err is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsMalformedBehavior checks if err is a behavior compilation error.
func IsMalformedBehavior(err error) bool {
	return errors.Is(err, ErrMalformedBehavior)
}

// IsTransport checks if err is a network or remote-status error.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsInvalid checks if err reports an invalid record, an invalid element
// name or behavior with no script equivalent.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidRecord) || errors.Is(err, ErrInvalidName) || errors.Is(err, ErrNotPortable)
}
