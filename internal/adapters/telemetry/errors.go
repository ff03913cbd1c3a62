package telemetry

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrEndOfSession = errors.New("end of session")
	ErrBadSnapshot  = errors.New("malformed snapshot")
)
