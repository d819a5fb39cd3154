// Package ingest implements the Entry Loop (SPEC_FULL.md §4.7, component
// C9): the single-threaded driver that reads records from a log source and
// routes each through the compiled workflow. Grounded on the teacher's
// cmd/gone/main.go run() shape (a small owning loop wired up in main, with
// slog.Default() as the fallback logger) and on SPEC_FULL.md §5's explicit
// concurrency model: one record fully traverses the workflow before the
// next is read.
package ingest

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/pipeline"
)

// LogSource produces the next record from the configured log source. Next
// blocks until a record is available or a fatal, initialization-class
// error occurs (SPEC_FULL.md §6); a transient per-line failure is the
// adapter's own concern and must never reach this port.
type LogSource interface {
	Next(ctx context.Context) (*domain.Record, error)
}

// Loop is the Entry Loop: the sole driver of Workflow.Run.
type Loop struct {
	Source   LogSource
	Workflow *pipeline.Workflow
	Logger   *slog.Logger
}

func (l *Loop) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Run drives records from Source through Workflow until ctx is cancelled
// or the source reports a fatal error. SIGTERM/SIGINT are honored only
// between records, letting an in-flight record finish its traversal before
// the daemon exits (§5); SIGHUP is explicitly a no-op, logged at WARNING,
// since live configuration reload is a non-goal (§1).
func (l *Loop) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for range hup {
			l.logger().Warn("received SIGHUP; live configuration reload is not supported, ignoring")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		record, err := l.Source.Next(ctx)
		if err != nil {
			return domain.WrapError(domain.ErrLogSource, "log source failed", err)
		}

		if err := l.Workflow.Run(ctx, record); err != nil {
			l.logger().Warn("workflow run failed", "err", err)
		}
	}
}
