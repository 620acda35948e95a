package guardian

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestState_RecordRestart(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	state := NewState()
	state.HighCPUSince = now.Add(-time.Minute)

	state.RecordRestart(now, ReasonMemoryExceeded)

	require.Equal(t, now, state.LastRestart)
	require.True(t, state.HighCPUSince.IsZero(), "restart resets the cpu streak")
	require.Equal(t, []RestartRecord{
		{Timestamp: now, Reason: ReasonMemoryExceeded},
	}, state.Restarts())
}

func TestState_RollingWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("counts only records within the trailing hour", func(t *testing.T) {
		t.Parallel()

		state := NewState()
		state.RecordRestart(now.Add(-90*time.Minute), ReasonMemoryExceeded)
		state.RecordRestart(now.Add(-61*time.Minute), ReasonCPUSustained)
		state.RecordRestart(now.Add(-30*time.Minute), ReasonMemoryExceeded)
		state.RecordRestart(now.Add(-time.Minute), ReasonManual)

		require.Equal(t, 2, state.RollingCount(now))
	})

	t.Run("record exactly one hour old is out", func(t *testing.T) {
		t.Parallel()

		state := NewState()
		state.RecordRestart(now.Add(-time.Hour), ReasonMemoryExceeded)

		require.Equal(t, 0, state.RollingCount(now))
	})

	t.Run("prune drops expired records oldest first", func(t *testing.T) {
		t.Parallel()

		state := NewState()
		state.RecordRestart(now.Add(-2*time.Hour), ReasonMemoryExceeded)
		state.RecordRestart(now.Add(-30*time.Minute), ReasonCPUSustained)

		state.Prune(now)

		require.Equal(t, []RestartRecord{
			{Timestamp: now.Add(-30 * time.Minute), Reason: ReasonCPUSustained},
		}, state.Restarts())
	})

	t.Run("empty state counts zero", func(t *testing.T) {
		t.Parallel()

		state := NewState()
		require.Equal(t, 0, state.RollingCount(now))
		state.Prune(now)
		require.Empty(t, state.Restarts())
	})
}
