package runner

import (
	"errors"
	"fmt"
)

// SetupError marks a failure of the run's infrastructure (output
// directory, run log, browser launch) as opposed to a failed capture.
// Callers usually fall back to previously generated assets.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup: %s: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// IsSetup reports whether err is, or wraps, a SetupError.
func IsSetup(err error) bool {
	var se *SetupError
	return errors.As(err, &se)
}
