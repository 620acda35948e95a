package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cyclesTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
	prometheus.CounterOpts{
		Name: "frps_guardian_cycles_total",
		Help: "Total number of guardian check cycles started.",
	},
)

var cyclesSkippedTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
	prometheus.CounterOpts{
		Name: "frps_guardian_cycles_skipped_total",
		Help: "Total number of cycles skipped because process metrics were unavailable.",
	},
)

var warningsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "frps_guardian_warnings_total",
		Help: "Total number of threshold warnings, by reason.",
	},
	[]string{"reason"},
)

var restartsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "frps_guardian_restarts_total",
		Help: "Total number of executed service restarts, by reason.",
	},
	[]string{"reason"},
)

var restartsSkippedTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "frps_guardian_restarts_skipped_total",
		Help: "Total number of restart decisions not executed, by cause " +
			"(cooldown, rate-limited, disabled).",
	},
	[]string{"cause"},
)

var restartsFailedTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
	prometheus.CounterOpts{
		Name: "frps_guardian_restarts_failed_total",
		Help: "Total number of restart attempts the service manager rejected.",
	},
)

var serviceMemoryMB = promauto.With(prometheus.DefaultRegisterer).NewGauge(
	prometheus.GaugeOpts{
		Name: "frps_guardian_service_memory_mb",
		Help: "RSS of the supervised process from the last sample, in MiB.",
	},
)

var serviceCPUPercent = promauto.With(prometheus.DefaultRegisterer).NewGauge(
	prometheus.GaugeOpts{
		Name: "frps_guardian_service_cpu_percent",
		Help: "CPU utilization of the supervised process from the last sample.",
	},
)

var systemMemoryPercent = promauto.With(prometheus.DefaultRegisterer).NewGauge(
	prometheus.GaugeOpts{
		Name: "frps_guardian_system_memory_percent",
		Help: "Host-wide memory utilization from the last sample.",
	},
)

// RecordCycle increments the cycle counter at the start of every check cycle.
func RecordCycle() {
	cyclesTotal.Inc()
}

// RecordCycleSkipped increments the counter for cycles that were a no-op
// because the supervised process could not be observed.
func RecordCycleSkipped() {
	cyclesSkippedTotal.Inc()
}

// RecordWarning increments the warning counter for the given reason.
func RecordWarning(reason string) {
	warningsTotal.WithLabelValues(reason).Inc()
}

// RecordRestart increments the executed-restart counter for the given reason.
func RecordRestart(reason string) {
	restartsTotal.WithLabelValues(reason).Inc()
}

// RecordRestartSkipped increments the skipped-restart counter for the given cause.
func RecordRestartSkipped(cause string) {
	restartsSkippedTotal.WithLabelValues(cause).Inc()
}

// RecordRestartFailed increments the failed-restart counter.
func RecordRestartFailed() {
	restartsFailedTotal.Inc()
}

// SetSampleGauges publishes the latest sample.
func SetSampleGauges(memoryMB, cpuPercent, sysMemoryPercent float64) {
	serviceMemoryMB.Set(memoryMB)
	serviceCPUPercent.Set(cpuPercent)
	systemMemoryPercent.Set(sysMemoryPercent)
}
