package dex

import (
	"errors"
	"fmt"
)

// Call failure kinds. A *CallError matches its kind with errors.Is.
var (
	ErrEncode    = errors.New("encode")
	ErrTransport = errors.New("transport")
	ErrDecode    = errors.New("decode")
	ErrNarrowing = errors.New("narrowing")
)

// ErrPoolNotFound is returned when the factory has no pool for a token pair and fee.
var ErrPoolNotFound = errors.New("pool not found")

// CallError reports a failed contract round trip.
type CallError struct {
	Method string
	Kind   error
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Method, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *CallError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func callErr(method string, kind error, err error) error {
	return &CallError{Method: method, Kind: kind, Err: err}
}

// NarrowingError reports a decoded value outside the target range.
type NarrowingError struct {
	Type  string
	Value string
}

func (e *NarrowingError) Error() string {
	return fmt.Sprintf("%s overflow: %s", e.Type, e.Value)
}

func (e *NarrowingError) Is(target error) bool {
	return target == ErrNarrowing
}
