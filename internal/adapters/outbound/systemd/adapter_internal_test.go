package systemd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and replays canned output.
type fakeRunner struct {
	calls [][]string
	out   []byte
	err   error
}

func (r *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))

	return r.out, r.err
}

func newTestAdapter(r *fakeRunner) *Adapter {
	return &Adapter{
		logger:     slog.Default(),
		run:        r.run,
		dropCaches: dropCachesPath,
	}
}

func TestAdapter_MainPID(t *testing.T) {
	t.Parallel()

	t.Run("parses the systemctl show output", func(t *testing.T) {
		t.Parallel()

		r := &fakeRunner{out: []byte("1234\n")}
		a := newTestAdapter(r)

		pid, err := a.MainPID(t.Context(), "frps")
		require.NoError(t, err)
		require.Equal(t, int32(1234), pid)
		require.Equal(t, [][]string{
			{"systemctl", "show", "--property", "MainPID", "--value", "frps"},
		}, r.calls)
	})

	t.Run("pid zero means the unit is not running", func(t *testing.T) {
		t.Parallel()

		r := &fakeRunner{out: []byte("0\n")}
		a := newTestAdapter(r)

		_, err := a.MainPID(t.Context(), "frps")
		require.Error(t, err)

		var notRunning *NotRunningError
		require.ErrorAs(t, err, &notRunning)
	})

	t.Run("systemctl failure is propagated", func(t *testing.T) {
		t.Parallel()

		r := &fakeRunner{err: errors.New("exit status 1: Unit frps.service not loaded")}
		a := newTestAdapter(r)

		_, err := a.MainPID(t.Context(), "frps")
		require.Error(t, err)

		var notRunning *NotRunningError
		require.False(t, errors.As(err, &notRunning))
	})
}

func TestParseMainPID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		out     string
		want    int32
		wantErr bool
	}{
		{name: "plain pid", out: "4321", want: 4321},
		{name: "trailing newline", out: "77\n", want: 77},
		{name: "zero pid", out: "0\n", want: 0},
		{name: "empty output", out: "", wantErr: true},
		{name: "garbage", out: "MainPID=12", wantErr: true},
		{name: "negative", out: "-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pid, err := parseMainPID([]byte(tt.out))
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, pid)
		})
	}
}

func TestAdapter_RestartAndStart(t *testing.T) {
	t.Parallel()

	t.Run("restart invokes systemctl restart", func(t *testing.T) {
		t.Parallel()

		r := &fakeRunner{}
		a := newTestAdapter(r)

		require.NoError(t, a.Restart(t.Context(), "frps"))
		require.Equal(t, [][]string{{"systemctl", "restart", "frps"}}, r.calls)
	})

	t.Run("start invokes systemctl start", func(t *testing.T) {
		t.Parallel()

		r := &fakeRunner{}
		a := newTestAdapter(r)

		require.NoError(t, a.Start(t.Context(), "frps"))
		require.Equal(t, [][]string{{"systemctl", "start", "frps"}}, r.calls)
	})

	t.Run("restart failure carries the unit name", func(t *testing.T) {
		t.Parallel()

		r := &fakeRunner{err: errors.New("exit status 1")}
		a := newTestAdapter(r)

		err := a.Restart(t.Context(), "frps")
		require.Error(t, err)
		require.Contains(t, err.Error(), "frps")
	})
}

func TestAdapter_Cleanup(t *testing.T) {
	t.Parallel()

	t.Run("syncs then drops caches", func(t *testing.T) {
		t.Parallel()

		target := filepath.Join(t.TempDir(), "drop_caches")
		require.NoError(t, os.WriteFile(target, []byte("0\n"), 0o644))

		r := &fakeRunner{}
		a := newTestAdapter(r)
		a.dropCaches = target

		require.NoError(t, a.Cleanup(t.Context()))
		require.Equal(t, [][]string{{"sync"}}, r.calls)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		require.Equal(t, dropCachesValue, string(data))
	})

	t.Run("sync failure aborts before the cache write", func(t *testing.T) {
		t.Parallel()

		target := filepath.Join(t.TempDir(), "drop_caches")

		r := &fakeRunner{err: errors.New("sync: not permitted")}
		a := newTestAdapter(r)
		a.dropCaches = target

		require.Error(t, a.Cleanup(t.Context()))
		require.NoFileExists(t, target)
	})
}
