package app

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by name lookups for an unknown identifier.
	ErrNotFound = errors.New("object not found")
	// ErrNoSession is returned when stopping an idle tracker.
	ErrNoSession = errors.New("no tracking session is active")
)

//ValidationError - malformed input refused before a session starts
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

//ResolutionError - failure to produce a fix for one tick
type ResolutionError struct {
	Target string
	Stage  string // ephemeris, lookup or transform
	Err    error
}

func (e *ResolutionError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

//TransportError - device open or write failure
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "device " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
