package kernel

import "errors"

var (
	// ErrEmptyInput is returned by Run for input that is empty or only
	// whitespace. Nothing is appended to the session.
	ErrEmptyInput = errors.New("input is empty")

	// ErrMaxIterations is returned by Run, together with an apology
	// response, when the model is still requesting tools after the
	// configured number of turns.
	ErrMaxIterations = errors.New("max iterations reached")
)
