package agent

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider registration and model invocation.
var (
	ErrProviderNotFound  = errors.New("provider not registered")
	ErrProviderExists    = errors.New("provider already registered")
	ErrEmptyProviderName = errors.New("provider name is empty")
	ErrNilResponse       = errors.New("model returned no response")
)

// Failure is returned by Client.Invoke once every attempt has failed.
type Failure struct {
	Attempts int
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("model call failed after %d attempts: %v", f.Attempts, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
