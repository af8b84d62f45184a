package app

import (
	"errors"
	"fmt"
)

// ErrUnknownTable is wrapped by ErrQuery when a table is not in the listing.
var ErrUnknownTable = errors.New("unknown table")

// ErrConnection represents a database connection error.
type ErrConnection struct {
	Cause error
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrQuery represents a failed listing or row fetch.
type ErrQuery struct {
	Table string
	Cause error
}

func (e *ErrQuery) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("query error: %v", e.Cause)
	}
	return fmt.Sprintf("query error on %q: %v", e.Table, e.Cause)
}

func (e *ErrQuery) Unwrap() error {
	return e.Cause
}

// ErrConfig represents a configuration error.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}
