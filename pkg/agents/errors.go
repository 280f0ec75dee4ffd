package agents

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse indicates the model returned no usable content.
var ErrEmptyResponse = errors.New("model returned an empty response")

// StageFailedError indicates a generation stage exhausted its attempts.
type StageFailedError struct {
	// Stage names the failed stage ("ideation", "code_generation").
	Stage string

	// Attempts is how many times the stage was tried.
	Attempts int

	// LastError is the error from the final attempt.
	LastError error
}

func (e *StageFailedError) Error() string {
	return fmt.Sprintf("stage %s failed after %d attempts: %v", e.Stage, e.Attempts, e.LastError)
}

func (e *StageFailedError) Unwrap() error {
	return e.LastError
}

// ParseError indicates a model response could not be parsed into the
// stage's expected structure.
type ParseError struct {
	// Stage names the stage whose output failed to parse.
	Stage string

	// Message describes what was wrong with the output.
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("stage %s: failed to parse response: %s", e.Stage, e.Message)
}
