// Command codecraft is the terminal editor client: it runs code through the
// execution gateway, remembers editor preferences, and talks to a codecraft
// server for history and sharing.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	handler := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	logger := slog.New(handler)

	runner := NewRunner(RunnerOpts{Logger: logger, LogHandler: handler})

	if err := runner.App().Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errRunFailed) {
			logger.Error("codecraft failed", "error", err)
		}
		os.Exit(1)
	}
}
