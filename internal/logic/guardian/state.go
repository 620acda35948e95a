package guardian

import "time"

// rollingWindow is the trailing period used to cap restart frequency.
const rollingWindow = time.Hour

// State is the guardian's mutable bookkeeping. It is passed explicitly
// through cycle functions so the loop can be driven with synthetic samples
// in tests; it is not persisted across guardian restarts.
type State struct {
	// LastRestart is when the last restart was executed. Zero before the
	// first restart.
	LastRestart time.Time

	// HighCPUSince is when the current above-limit CPU streak began.
	// Zero when the last sample was below the limit.
	HighCPUSince time.Time

	// NextScheduled is the next maintenance restart occurrence. Zero when
	// no schedule is configured.
	NextScheduled time.Time

	// restarts holds executed restarts oldest first, pruned to the
	// rolling window on every gate check.
	restarts []RestartRecord
}

func NewState() *State {
	return &State{}
}

// RecordRestart appends a record and updates the cooldown anchor. The
// high-CPU streak is reset: the restarted process is a new PID.
func (s *State) RecordRestart(now time.Time, reason Reason) {
	s.restarts = append(s.restarts, RestartRecord{Timestamp: now, Reason: reason})
	s.LastRestart = now
	s.HighCPUSince = time.Time{}
}

// Prune drops restart records that fell out of the rolling window.
func (s *State) Prune(now time.Time) {
	cutoff := now.Add(-rollingWindow)

	drop := 0
	for drop < len(s.restarts) && !s.restarts[drop].Timestamp.After(cutoff) {
		drop++
	}

	s.restarts = s.restarts[drop:]
}

// RollingCount returns the number of executed restarts in the trailing
// window. It does not prune, so it is safe under a read lock.
func (s *State) RollingCount(now time.Time) int {
	cutoff := now.Add(-rollingWindow)

	count := 0
	for i := len(s.restarts) - 1; i >= 0; i-- {
		if !s.restarts[i].Timestamp.After(cutoff) {
			break
		}

		count++
	}

	return count
}

// Restarts returns a copy of the retained restart records, oldest first.
func (s *State) Restarts() []RestartRecord {
	out := make([]RestartRecord, len(s.restarts))
	copy(out, s.restarts)

	return out
}
