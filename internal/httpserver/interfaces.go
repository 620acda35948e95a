package httpserver

import (
	"context"

	"github.com/frpguard/frps-guardian/internal/logic/guardian"
)

// guardianService is the consumer-side view of the guardian the HTTP layer
// needs: liveness, a status snapshot, and the manual restart command the
// external dashboard calls.
type guardianService interface {
	Ping(ctx context.Context) error
	Ready() <-chan struct{}
	Status() guardian.StatusSnapshot
	ManualRestartCommand(ctx context.Context) guardian.Outcome
}
