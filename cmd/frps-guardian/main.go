package main

import (
	"log/slog"
	"os"

	"github.com/frpguard/frps-guardian/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		slog.Error("failed to run", "reason", err)
		os.Exit(1)
	}

	slog.Info("bye")
}
