package registry

import "errors"

// Sentinel errors for the backend registry.
// These allow callers to check error types with errors.Is() instead of string matching.
var (
	// ErrUnsupportedBackend is returned when a subprotocol has no registered
	// constructor.
	ErrUnsupportedBackend = errors.New("unsupported backend")
)
