package systemd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/frpguard/frps-guardian/internal/logic/guardian"
)

const (
	// queryTimeout bounds systemctl show; restartTimeout matches the
	// default systemd job timeout headroom for a small service.
	queryTimeout   = 10 * time.Second
	restartTimeout = 30 * time.Second

	dropCachesPath = "/proc/sys/vm/drop_caches"

	// dropCachesValue frees page cache, dentries and inodes.
	dropCachesValue = "3\n"
)

// runner executes a command and returns its stdout.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Adapter drives a systemd unit through systemctl. The deployment grants
// the guardian user `sudo systemctl <verb> <unit>` via sudoers, so
// everything goes through the CLI rather than the D-Bus API.
type Adapter struct {
	logger     *slog.Logger
	run        runner
	dropCaches string
}

var _ guardian.ServiceManager = (*Adapter)(nil)

// New creates a new systemd adapter.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{
		logger:     logger,
		run:        execRun,
		dropCaches: dropCachesPath,
	}
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

// MainPID returns the unit's main process ID. A unit without a main
// process fails with a NotRunningError.
func (a *Adapter) MainPID(ctx context.Context, serviceName string) (int32, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out, err := a.run(ctx, "systemctl", "show", "--property", "MainPID", "--value", serviceName)
	if err != nil {
		return 0, fmt.Errorf("query main pid: %w", err)
	}

	pid, err := parseMainPID(out)
	if err != nil {
		return 0, fmt.Errorf("query main pid: %w", err)
	}

	if pid == 0 {
		return 0, fmt.Errorf("query main pid of %s: %w", serviceName, errNotRunning)
	}

	return pid, nil
}

func parseMainPID(out []byte) (int32, error) {
	pid, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse main pid %q: %w", strings.TrimSpace(string(out)), err)
	}

	if pid < 0 {
		return 0, fmt.Errorf("parse main pid: negative pid %d", pid)
	}

	return int32(pid), nil
}

// Restart restarts the unit.
func (a *Adapter) Restart(ctx context.Context, serviceName string) error {
	ctx, cancel := context.WithTimeout(ctx, restartTimeout)
	defer cancel()

	if _, err := a.run(ctx, "systemctl", "restart", serviceName); err != nil {
		return fmt.Errorf("restart %s: %w", serviceName, err)
	}

	return nil
}

// Start starts the unit.
func (a *Adapter) Start(ctx context.Context, serviceName string) error {
	ctx, cancel := context.WithTimeout(ctx, restartTimeout)
	defer cancel()

	if _, err := a.run(ctx, "systemctl", "start", serviceName); err != nil {
		return fmt.Errorf("start %s: %w", serviceName, err)
	}

	return nil
}

// Cleanup flushes dirty pages and drops reclaimable kernel caches. Needs
// root; callers treat failure as non-fatal.
func (a *Adapter) Cleanup(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := a.run(ctx, "sync"); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if err := os.WriteFile(a.dropCaches, []byte(dropCachesValue), 0o200); err != nil {
		return fmt.Errorf("drop caches: %w", err)
	}

	return nil
}
