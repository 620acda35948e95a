package procsample

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/frpguard/frps-guardian/internal/logic/guardian"
)

const bytesPerMiB = 1024 * 1024

// pidResolver is the slice of the service manager this sampler needs.
type pidResolver interface {
	MainPID(ctx context.Context, serviceName string) (int32, error)
}

// Sampler reads RSS and CPU of the supervised unit's main process.
// Not safe for concurrent use; the guardian samples from one goroutine.
type Sampler struct {
	logger *slog.Logger
	pids   pidResolver

	// proc is reused across cycles so CPUPercent measures the interval
	// since the previous sample instead of since process start.
	proc *process.Process
}

// New creates a new process sampler.
func New(logger *slog.Logger, pids pidResolver) *Sampler {
	return &Sampler{
		logger: logger,
		pids:   pids,
	}
}

var _ guardian.Sampler = (*Sampler)(nil)

// Sample resolves the unit's main PID and reads its metrics. Errors keep
// the adapter's not-running marker intact so the core can tell "unit is
// down" from "metrics unreadable".
//
// CPUPercent is averaged since the previous call for the same process
// (since process start on the first call), which at a 30s interval is the
// per-cycle utilization the policy wants.
func (s *Sampler) Sample(ctx context.Context, serviceName string) (guardian.Sample, error) {
	pid, err := s.pids.MainPID(ctx, serviceName)
	if err != nil {
		return guardian.Sample{}, fmt.Errorf("resolve pid: %w", err)
	}

	if s.proc == nil || s.proc.Pid != pid {
		proc, err := process.NewProcessWithContext(ctx, pid)
		if err != nil {
			return guardian.Sample{}, fmt.Errorf("open process %d: %w", pid, err)
		}

		s.proc = proc
	}

	memInfo, err := s.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		s.proc = nil

		return guardian.Sample{}, fmt.Errorf("read memory of process %d: %w", pid, err)
	}

	cpuPercent, err := s.proc.CPUPercentWithContext(ctx)
	if err != nil {
		s.proc = nil

		return guardian.Sample{}, fmt.Errorf("read cpu of process %d: %w", pid, err)
	}

	sample := guardian.Sample{
		Timestamp:    time.Now(),
		MemoryUsedMB: float64(memInfo.RSS) / bytesPerMiB,
		CPUPercent:   cpuPercent,
	}

	// Host-wide memory is informational only; keep the sample on failure.
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "read system memory failed", "reason", err)
	} else {
		sample.SystemMemoryPercent = vm.UsedPercent
	}

	return sample, nil
}
