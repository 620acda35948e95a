package guardian

import "errors"

var (
	// ErrMetricsUnavailable means the supervised process could not be
	// observed this cycle. Transient: the cycle is a no-op.
	ErrMetricsUnavailable = errors.New("metrics unavailable")

	// ErrServiceControl means the service manager failed to execute a
	// restart. State is left untouched.
	ErrServiceControl = errors.New("service control")
)
