package guardian

import (
	"context"
	"time"
)

// Sampler is the port for reading process-level metrics of the supervised
// service. Implementations are provided by outbound adapters.
type Sampler interface {
	Sample(ctx context.Context, serviceName string) (Sample, error)
}

// ServiceManager is the port for the OS service supervisor.
type ServiceManager interface {
	Restart(ctx context.Context, serviceName string) error
	Start(ctx context.Context, serviceName string) error

	// Cleanup requests a non-disruptive cache cleanup on the host.
	// Best effort; callers log and ignore failures.
	Cleanup(ctx context.Context) error
}

// scheduler computes the next occurrence of the restart schedule.
type scheduler interface {
	NextAfter(spec, tz string, after time.Time) (time.Time, error)
}

// notRunning is a private interface for checking "service not running"
// errors without importing the adapter package.
type notRunning interface {
	IsNotRunning()
}
