// Command alphadiv computes alpha-diversity metrics from abundance tables
// and compares them between groups of samples.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}
	var ee *exitError
	if errors.As(err, &ee) {
		slog.Error(ee.msg)
		os.Exit(ee.code)
	}
	slog.Error("alphadiv failed", "err", err)
	os.Exit(1)
}

// exitError ends the process with a specific status after a run that
// completed but must be reported as failed.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
