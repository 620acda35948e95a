package config

import "time"

// Config file keys. Every key can be overridden by an environment variable
// with the FRPS_GUARDIAN_ prefix and the key upper-cased
// (e.g. FRPS_GUARDIAN_MEMORY_LIMIT_MB). Durations are plain integer seconds.

// Systemd unit to supervise.
const keyServiceName = "service_name"

// Soft memory limit in MiB; at or above it the guardian warns.
const keyMemoryLimitMB = "memory_limit_mb"

// Hard memory limit in MiB; at or above it the guardian restarts immediately.
const keyMemoryHardLimitMB = "memory_hard_limit_mb"

// CPU utilization threshold in percent.
const keyCPULimitPercent = "cpu_limit_percent"

// Seconds CPU must stay at or above the limit before a restart. The
// documented default is five minutes.
const keyCPUSustainSeconds = "cpu_sustain_seconds"

// Seconds between check cycles.
const (
	keyCheckInterval = "check_interval"
	minCheckInterval = 5 * time.Second
)

// Minimum seconds between consecutive restarts.
const keyRestartCooldown = "restart_cooldown"

// Cap on executed restarts in any trailing 60 minutes.
const keyMaxRestartsPerHour = "max_restarts_per_hour"

// When false, restart decisions are logged as warnings and never executed.
const keyEnableAutoRestart = "enable_auto_restart"

// When true, memory-high warnings trigger a best-effort cache cleanup.
const keyEnableMemoryCleanup = "enable_memory_cleanup"

// Optional cron expression for maintenance restarts (e.g. "30 4 * * *").
// Empty disables them.
const keyRestartSchedule = "restart_schedule"

// IANA timezone for the restart schedule (e.g. Asia/Shanghai). Empty means UTC.
const keyRestartScheduleTZ = "restart_schedule_tz"

// Log level: debug, info, warn, error.
const keyLogLevel = "log_level"

// Log format: text or json.
const keyLogFormat = "log_format"

// Append-only log file; empty logs to stdout only.
const keyLogFile = "log_file"

// Port for the status/control HTTP server. Empty disables it.
const keyHTTPPort = "http_port"

// Port for Prometheus metrics (GET /metrics). Empty disables it.
const keyMetricsPort = "metrics_port"
