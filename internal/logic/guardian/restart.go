package guardian

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frpguard/frps-guardian/internal/infra/metrics"
)

// executeRestart applies the cooldown and rolling-hour gates, then delegates
// to the service manager. Bookkeeping is updated only after the manager
// reports success, so a failed restart attempt never consumes budget.
//
// The gates apply to every reason, manual and scheduled included.
func (s *Service) executeRestart(
	ctx context.Context,
	logger *slog.Logger,
	reason Reason,
	now time.Time,
) Outcome {
	if !s.state.LastRestart.IsZero() {
		sinceLast := now.Sub(s.state.LastRestart)
		if sinceLast < s.cfg.RestartCooldown {
			logger.WarnContext(ctx, "restart skipped, cooldown active",
				"reason", reason,
				"remaining", (s.cfg.RestartCooldown - sinceLast).Round(time.Second),
			)
			metrics.RecordRestartSkipped(string(SkipCooldown))

			return Outcome{Kind: OutcomeSkipped, Skip: SkipCooldown}
		}
	}

	s.state.Prune(now)

	if s.state.RollingCount(now) >= s.cfg.MaxRestartsPerHour {
		logger.WarnContext(ctx, "restart skipped, hourly cap reached",
			"reason", reason,
			"maxPerHour", s.cfg.MaxRestartsPerHour,
		)
		metrics.RecordRestartSkipped(string(SkipRateLimited))

		return Outcome{Kind: OutcomeSkipped, Skip: SkipRateLimited}
	}

	logger.WarnContext(ctx, "restarting service", "reason", reason)

	if err := s.manager.Restart(ctx, s.cfg.ServiceName); err != nil {
		wrapped := fmt.Errorf("%w: %w", ErrServiceControl, err)
		logger.ErrorContext(ctx, "restart failed", "reason", wrapped)
		metrics.RecordRestartFailed()

		return Outcome{Kind: OutcomeFailed, Err: wrapped}
	}

	s.state.RecordRestart(now, reason)
	metrics.RecordRestart(string(reason))

	logger.InfoContext(ctx, "service restarted",
		"reason", reason,
		"rollingCount", s.state.RollingCount(now),
	)

	return Outcome{Kind: OutcomeExecuted}
}

// cleanup asks the service manager for a non-disruptive cache cleanup.
// Best effort: failures are logged and ignored.
func (s *Service) cleanup(ctx context.Context, logger *slog.Logger) {
	if err := s.manager.Cleanup(ctx); err != nil {
		logger.WarnContext(ctx, "memory cleanup failed", "reason", err)

		return
	}

	logger.InfoContext(ctx, "memory cleanup requested")
}

// runScheduled executes a due maintenance restart and advances the schedule.
// The occurrence is consumed even when the gate skips it; a skipped
// maintenance restart waits for the next occurrence rather than retrying
// every cycle.
func (s *Service) runScheduled(ctx context.Context, logger *slog.Logger, now time.Time) {
	if s.sched == nil || s.state.NextScheduled.IsZero() || now.Before(s.state.NextScheduled) {
		return
	}

	outcome := s.executeRestart(ctx, logger, ReasonScheduled, now)
	logger.InfoContext(ctx, "scheduled restart", "outcome", outcome.String())

	next, err := s.sched.NextAfter(s.cfg.RestartSchedule, s.cfg.RestartScheduleTZ, now)
	if err != nil {
		logger.ErrorContext(ctx, "advance restart schedule", "reason", err)
		s.state.NextScheduled = time.Time{}

		return
	}

	s.state.NextScheduled = next
}
