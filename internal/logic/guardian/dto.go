package guardian

import (
	"fmt"
	"time"
)

// Config holds the guardian's operating parameters. It is immutable after
// startup; the loop never re-reads configuration.
type Config struct {
	// ServiceName is the unit identifier resolved by the service manager.
	ServiceName string

	// MemorySoftLimitMB triggers a warning only.
	MemorySoftLimitMB float64

	// MemoryHardLimitMB triggers an immediate restart, no sustain window.
	MemoryHardLimitMB float64

	// CPULimitPercent is the CPU utilization threshold.
	CPULimitPercent float64

	// CPUSustain is how long CPU must stay at or above the limit before a
	// restart is decided. Default is five minutes.
	CPUSustain time.Duration

	// CheckInterval is the time between cycles.
	CheckInterval time.Duration

	// RestartCooldown is the minimum time between consecutive restarts.
	RestartCooldown time.Duration

	// MaxRestartsPerHour caps executed restarts in any trailing 60 minutes.
	MaxRestartsPerHour int

	// AutoRestart, when false, downgrades policy restart decisions to warnings.
	AutoRestart bool

	// MemoryCleanup enables the best-effort cache cleanup hook on
	// memory-high warnings.
	MemoryCleanup bool

	// RestartSchedule is an optional cron expression for maintenance
	// restarts. Empty disables scheduled restarts.
	RestartSchedule string

	// RestartScheduleTZ is the IANA timezone for RestartSchedule.
	// Empty means UTC.
	RestartScheduleTZ string
}

// Sample is one point-in-time observation of the supervised process.
type Sample struct {
	Timestamp    time.Time
	MemoryUsedMB float64
	CPUPercent   float64

	// SystemMemoryPercent is host-wide memory utilization. Carried for
	// logging and the status endpoint; it never drives a restart.
	SystemMemoryPercent float64
}

// ActionKind is the class of a policy decision.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionWarn
	ActionRestart
)

// Reason explains a warning or a restart.
type Reason string

const (
	ReasonMemoryExceeded Reason = "memory-exceeded"
	ReasonMemoryHigh     Reason = "memory-high"
	ReasonCPUSustained   Reason = "cpu-sustained"
	ReasonCPUHigh        Reason = "cpu-high"
	ReasonManual         Reason = "manual"
	ReasonScheduled      Reason = "scheduled"
)

// Action is the policy decision for one cycle.
type Action struct {
	Kind   ActionKind
	Reason Reason
}

func (a Action) String() string {
	switch a.Kind {
	case ActionWarn:
		return fmt.Sprintf("warn(%s)", a.Reason)
	case ActionRestart:
		return fmt.Sprintf("restart(%s)", a.Reason)
	case ActionNone:
	}

	return "none"
}

// RestartRecord is one executed restart, kept for the rolling-hour window.
type RestartRecord struct {
	Timestamp time.Time
	Reason    Reason
}

// SkipCause explains why a restart decision was not executed.
type SkipCause string

const (
	SkipDisabled    SkipCause = "disabled"
	SkipCooldown    SkipCause = "cooldown"
	SkipRateLimited SkipCause = "rate-limited"
)

// OutcomeKind is the class of a restart controller result.
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeSkipped
	OutcomeExecuted
	OutcomeFailed
)

// Outcome is the restart controller's result for one cycle.
type Outcome struct {
	Kind OutcomeKind
	Skip SkipCause
	Err  error
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSkipped:
		return fmt.Sprintf("skipped(%s)", o.Skip)
	case OutcomeExecuted:
		return "executed"
	case OutcomeFailed:
		return fmt.Sprintf("failed: %v", o.Err)
	case OutcomeNone:
	}

	return "none"
}

// StatusSnapshot is a read-only view of the guardian for the HTTP layer.
type StatusSnapshot struct {
	ServiceName          string         `json:"serviceName"`
	StartTime            time.Time      `json:"startTime"`
	Uptime               time.Duration  `json:"-"`
	LastCycleEnd         time.Time      `json:"lastCycleEnd"`
	LastSample           *Sample        `json:"lastSample,omitempty"`
	LastAction           string         `json:"lastAction"`
	LastRestart          time.Time      `json:"lastRestart"`
	RollingRestartCount  int            `json:"rollingRestartCount"`
	NextScheduledRestart time.Time      `json:"nextScheduledRestart"`
	AutoRestart          bool           `json:"autoRestart"`
}
