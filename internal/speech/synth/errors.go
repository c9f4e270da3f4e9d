package synth

import (
	"errors"
	"fmt"
)

// Failure is the single error class of the synthesis path: transport
// errors, non-2xx responses and unusable payloads.
type Failure struct {
	Reason     string
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("synthesis failed: %s (status %d): %v", f.Reason, f.StatusCode, f.Err)
	}
	return fmt.Sprintf("synthesis failed: %s: %v", f.Reason, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// IsFailure reports whether err is or wraps a *Failure.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}
