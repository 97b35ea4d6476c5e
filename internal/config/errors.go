package config

import (
	"errors"
	"fmt"
)

// Load failure kinds. An *Error matches its kind with errors.Is.
var (
	ErrIO         = errors.New("io")
	ErrFormat     = errors.New("format")
	ErrValidation = errors.New("validation")
)

// Error describes why the operator config could not be loaded.
type Error struct {
	Kind  error
	Path  string
	Field string
	Value string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Kind == ErrValidation:
		return fmt.Sprintf("config %s: invalid %s %q: %v", e.Kind, e.Field, e.Value, e.Err)
	case e.Field != "":
		return fmt.Sprintf("config %s: %s: %v", e.Kind, e.Field, e.Err)
	default:
		return fmt.Sprintf("config %s: %s: %v", e.Kind, e.Path, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
