package guardian

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frpguard/frps-guardian/internal/infra/metrics"
)

// Service runs the sample-evaluate-act loop for one supervised unit.
type Service struct {
	logger  *slog.Logger
	sampler Sampler
	manager ServiceManager
	sched   scheduler
	cfg     Config

	startedAt  time.Time
	ready      chan struct{}
	doneCh     chan struct{}
	inShutdown atomic.Bool

	// mu guards state and the last-cycle fields. The loop is the usual
	// mutator; manual restarts from the HTTP layer are the second one.
	mu           sync.RWMutex
	state        *State
	lastCycleEnd time.Time
	lastSample   *Sample
	lastAction   Action
}

// New creates the guardian service. sched may be nil when no restart
// schedule is configured.
func New(
	logger *slog.Logger,
	sampler Sampler,
	manager ServiceManager,
	sched scheduler,
	cfg Config,
) (*Service, error) {
	s := &Service{
		logger:    logger,
		sampler:   sampler,
		manager:   manager,
		sched:     sched,
		cfg:       cfg,
		startedAt: time.Now(),
		ready:     make(chan struct{}),
		doneCh:    make(chan struct{}),
		state:     NewState(),
	}

	if cfg.RestartSchedule != "" {
		if sched == nil {
			return nil, fmt.Errorf("restart schedule %q configured without a scheduler", cfg.RestartSchedule)
		}

		next, err := sched.NextAfter(cfg.RestartSchedule, cfg.RestartScheduleTZ, s.startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse restart schedule: %w", err)
		}

		s.state.NextScheduled = next
	}

	return s, nil
}

func (s *Service) Start(ctx context.Context) error {
	if s.inShutdown.Load() {
		s.logger.InfoContext(ctx, "guardian service is shutting down, skipping start")

		return nil
	}

	go s.RunCommand(ctx)

	return nil
}

// Name returns the name of the guardian component
func (s *Service) Name() string {
	return "guardian-loop"
}

func (s *Service) Ping(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
		lastCycleAge := s.getLastCycleAge()
		if lastCycleAge > 2*s.cfg.CheckInterval {
			return fmt.Errorf("last cycle was too long ago: %s", lastCycleAge.Round(time.Second).String())
		}

		return nil
	default:
		return fmt.Errorf("guardian service is not ready")
	}
}

func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

func (s *Service) Shutdown(ctx context.Context) error {
	if !s.inShutdown.CompareAndSwap(false, true) {
		s.logger.ErrorContext(ctx, "guardian service is already shutting down, skipping shutdown")

		return nil // Already shutting down
	}

	defer func() {
		s.logger.InfoContext(ctx, "guardian service shut downed")
	}()

	s.logger.InfoContext(ctx, "shutting down guardian service")

	// Wait for RunCommand to exit, respecting shutdown context
	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before guardian loop exited: %w", ctx.Err())
	case <-s.doneCh:
		s.logger.InfoContext(ctx, "guardian loop exited")
	}

	return nil
}

// RunCommand runs the guardian in a loop with the configured interval.
func (s *Service) RunCommand(ctx context.Context) {
	defer close(s.doneCh)

	logger := s.logger.With("component", "guardian-loop")

	logger.InfoContext(ctx, "guardian started",
		"service", s.cfg.ServiceName,
		"memorySoftLimitMB", s.cfg.MemorySoftLimitMB,
		"memoryHardLimitMB", s.cfg.MemoryHardLimitMB,
		"cpuLimitPercent", s.cfg.CPULimitPercent,
		"checkInterval", s.cfg.CheckInterval,
		"autoRestart", s.cfg.AutoRestart,
	)

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	close(s.ready)

	for {
		_, _, err := s.CheckCommand(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "cycle error", "reason", err)
		}

		s.setLastCycleEnd()

		select {
		case <-ticker.C:
		case <-ctx.Done():
			logger.InfoContext(ctx, "terminating guardian loop")

			return
		}
	}
}

// CheckCommand runs one sample-evaluate-act cycle. A cycle whose sample
// cannot be read is a no-op: the error is returned for logging, the loop
// keeps going, and no restart is ever triggered from missing data.
func (s *Service) CheckCommand(ctx context.Context) (Action, Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cycle(ctx, time.Now())
}

func (s *Service) cycle(ctx context.Context, now time.Time) (Action, Outcome, error) {
	logger := s.logger.With("service", s.cfg.ServiceName)

	metrics.RecordCycle()

	s.runScheduled(ctx, logger, now)

	sample, err := s.sampler.Sample(ctx, s.cfg.ServiceName)
	if err != nil {
		var down notRunning
		if errors.As(err, &down) {
			logger.WarnContext(ctx, "service not running, attempting start")

			if startErr := s.manager.Start(ctx, s.cfg.ServiceName); startErr != nil {
				logger.ErrorContext(ctx, "service start failed", "reason", startErr)
			} else {
				logger.InfoContext(ctx, "service start requested")
			}

			return Action{}, Outcome{}, nil
		}

		metrics.RecordCycleSkipped()

		return Action{}, Outcome{}, fmt.Errorf("%w: %w", ErrMetricsUnavailable, err)
	}

	s.lastSample = &sample
	metrics.SetSampleGauges(sample.MemoryUsedMB, sample.CPUPercent, sample.SystemMemoryPercent)

	logger.InfoContext(ctx, "sample",
		"memoryMB", sample.MemoryUsedMB,
		"cpuPercent", sample.CPUPercent,
		"systemMemoryPercent", sample.SystemMemoryPercent,
	)

	action := Evaluate(s.cfg, sample, s.state)
	s.lastAction = action

	outcome := s.act(ctx, logger, action, sample, now)

	return action, outcome, nil
}

// act carries out a policy decision: logs warnings, runs the cleanup hook,
// and hands restart decisions to the gate. Restart decisions are downgraded
// to warnings when auto-restart is disabled.
func (s *Service) act(
	ctx context.Context,
	logger *slog.Logger,
	action Action,
	sample Sample,
	now time.Time,
) Outcome {
	switch action.Kind {
	case ActionNone:
		return Outcome{}

	case ActionWarn:
		metrics.RecordWarning(string(action.Reason))
		logger.WarnContext(ctx, "threshold warning",
			"reason", action.Reason,
			"memoryMB", sample.MemoryUsedMB,
			"cpuPercent", sample.CPUPercent,
		)

		if action.Reason == ReasonMemoryHigh && s.cfg.MemoryCleanup {
			s.cleanup(ctx, logger)
		}

		return Outcome{}

	case ActionRestart:
		if !s.cfg.AutoRestart {
			logger.WarnContext(ctx, "restart suppressed, auto-restart disabled",
				"reason", action.Reason,
				"memoryMB", sample.MemoryUsedMB,
				"cpuPercent", sample.CPUPercent,
			)
			metrics.RecordRestartSkipped(string(SkipDisabled))

			return Outcome{Kind: OutcomeSkipped, Skip: SkipDisabled}
		}

		return s.executeRestart(ctx, logger, action.Reason, now)
	}

	return Outcome{}
}

// ManualRestartCommand executes an operator-requested restart through the
// same gate and bookkeeping as policy restarts. The auto-restart switch
// does not apply: the request is explicit.
func (s *Service) ManualRestartCommand(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.logger.With("service", s.cfg.ServiceName)

	return s.executeRestart(ctx, logger, ReasonManual, time.Now())
}

// Status returns a read-only snapshot for the HTTP layer.
func (s *Service) Status() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sample *Sample
	if s.lastSample != nil {
		copied := *s.lastSample
		sample = &copied
	}

	return StatusSnapshot{
		ServiceName:          s.cfg.ServiceName,
		StartTime:            s.startedAt,
		Uptime:               time.Since(s.startedAt),
		LastCycleEnd:         s.lastCycleEnd,
		LastSample:           sample,
		LastAction:           s.lastAction.String(),
		LastRestart:          s.state.LastRestart,
		RollingRestartCount:  s.state.RollingCount(time.Now()),
		NextScheduledRestart: s.state.NextScheduled,
		AutoRestart:          s.cfg.AutoRestart,
	}
}

func (s *Service) getLastCycleAge() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return time.Since(s.lastCycleEnd)
}

func (s *Service) setLastCycleEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastCycleEnd = time.Now()
}
