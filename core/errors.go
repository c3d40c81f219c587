package core

import (
	"errors"
	"fmt"
)

// ErrSessionClosed is returned when a step is attempted after final feedback
// has been produced.
var ErrSessionClosed = errors.New("session already finalized")

// ValidationError marks a foundational validation failure (malformed topic
// plan, unusable observer report). It is fatal for the session: the engine
// never retries it and the session cannot proceed.
type ValidationError struct {
	Stage  string // stage that rejected the data
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed: %s", e.Stage, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
