package guardian

import "time"

// Evaluate compares one sample against the configured limits and decides
// the action for this cycle. Its only side effect is advancing or resetting
// the high-CPU streak on state.
//
// A memory-triggered restart outranks a CPU-triggered one: memory
// exhaustion is the urgent failure mode on a 0.5GB host. The streak still
// advances in a cycle decided by memory, so a later cycle can fire
// cpu-sustained without losing time. Downgrading restarts when auto-restart
// is disabled is the restart controller's job, not the evaluator's.
func Evaluate(cfg Config, sample Sample, state *State) Action {
	cpu := evaluateCPU(cfg, sample, state)

	if cfg.MemoryHardLimitMB > 0 && sample.MemoryUsedMB >= cfg.MemoryHardLimitMB {
		return Action{Kind: ActionRestart, Reason: ReasonMemoryExceeded}
	}

	if cpu.Kind == ActionRestart {
		return cpu
	}

	if cfg.MemorySoftLimitMB > 0 && sample.MemoryUsedMB >= cfg.MemorySoftLimitMB {
		return Action{Kind: ActionWarn, Reason: ReasonMemoryHigh}
	}

	return cpu
}

// evaluateCPU tracks the above-limit streak and decides the CPU-side action.
// A single below-limit sample resets the streak to zero.
func evaluateCPU(cfg Config, sample Sample, state *State) Action {
	if sample.CPUPercent < cfg.CPULimitPercent {
		state.HighCPUSince = time.Time{}

		return Action{}
	}

	if state.HighCPUSince.IsZero() {
		state.HighCPUSince = sample.Timestamp
	}

	if sample.Timestamp.Sub(state.HighCPUSince) >= cfg.CPUSustain {
		return Action{Kind: ActionRestart, Reason: ReasonCPUSustained}
	}

	return Action{Kind: ActionWarn, Reason: ReasonCPUHigh}
}
