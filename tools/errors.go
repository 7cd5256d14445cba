package tools

import (
	"errors"
	"fmt"
)

// Sentinel errors for the tools registry.
var (
	ErrNotFound      = errors.New("tool not found")
	ErrAlreadyExists = errors.New("tool already registered")
	ErrEmptyName     = errors.New("tool name is empty")
	ErrNoSchema      = errors.New("tool has no input schema")
	ErrNoExecute     = errors.New("tool has no execute function")
)

// ValidationError reports tool arguments that could not be parsed against
// the tool's input schema. It is never retried.
type ValidationError struct {
	Tool string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Tool == "" {
		return fmt.Sprintf("invalid arguments: %v", e.Err)
	}
	return fmt.Sprintf("invalid arguments for %s: %v", e.Tool, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Failure is the structured in-band value returned in place of a tool's
// output once every execution attempt has failed.
type Failure struct {
	Error string `json:"error"`
}
