package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/lsx/internal/shared"
)

func main() {
	os.Exit(run(os.Args))
}

// run executes the CLI and returns the process exit code once every deferred cleanup has run.
func run(args []string) int {
	logger := shared.NewLogger(nil)

	if loaded := shared.LoadEnvFiles(); len(loaded) > 0 {
		logger.Debug("loaded env files", "files", loaded)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	if err := runner.app().Run(ctx, args); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted")
			return 130
		}
		logger.Errorf("application error: %v", err)
		return 1
	}
	return 0
}
