package analysis

import (
	"errors"
	"fmt"
)

var ErrEmptyText = errors.New("no text provided")

// ValidationError reports input that was rejected before any processing.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// ProcessingError reports a failure inside one stage of the pipeline.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }
