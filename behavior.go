package wcx

import (
	"errors"

	"github.com/pthm/wcx/lib/behavior"
)

// Template is a compiled render function. See lib/behavior for the
// template language.
type Template = behavior.Template

// Method is a compiled component method.
type Method = behavior.Method

// Scope is the input to a method call.
type Scope = behavior.Scope

// CompileTemplate parses template source text.
func CompileTemplate(src string) (*Template, error) {
	return behavior.CompileTemplate(src)
}

// CompileMethod parses method source text.
func CompileMethod(src string) (*Method, error) {
	return behavior.CompileMethod(src)
}

// MustTemplate is like CompileTemplate but panics on error.
func MustTemplate(src string) *Template {
	return behavior.MustTemplate(src)
}

// MustMethod is like CompileMethod but panics on error.
func MustMethod(src string) *Method {
	return behavior.MustMethod(src)
}

// wrapBehaviorError maps behavior package errors onto wcx sentinels.
func wrapBehaviorError(field string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, behavior.ErrNotPortable) {
		return &notPortableError{field: field, err: err}
	}
	return &MalformedBehaviorError{Field: field, Err: err}
}

type notPortableError struct {
	field string
	err   error
}

func (e *notPortableError) Error() string {
	return "wcx: " + e.field + ": " + e.err.Error()
}

func (e *notPortableError) Unwrap() []error {
	return []error{ErrNotPortable, e.err}
}
