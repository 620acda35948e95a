package systemd

// NotRunningError represents a unit with no main process, which is not a
// sampling failure: the guardian reacts by starting the unit.
type NotRunningError struct{}

func (e *NotRunningError) Error() string {
	return "service not running"
}

func (e *NotRunningError) IsNotRunning() {}

var errNotRunning = &NotRunningError{}
