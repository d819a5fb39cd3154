package journal

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/stefal/pyruse-go/internal/modules"
)

// Writer publishes a rendered Log action message back to the system log
// via a configurable subprocess, one spawn per call (default
// "systemd-cat -t pyruse"), with severity conveyed as a journal priority
// (SPEC_FULL.md §6). It implements modules.LogPort.
type Writer struct {
	// Command overrides the subprocess base command.
	Command string
	// Timeout bounds each subprocess invocation; default 5s.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

func (w *Writer) command() (string, []string) {
	c := w.Command
	if c == "" {
		c = "systemd-cat -t pyruse"
	}
	parts := strings.Fields(c)
	return parts[0], parts[1:]
}

func (w *Writer) timeout() time.Duration {
	if w.Timeout <= 0 {
		return 5 * time.Second
	}
	return w.Timeout
}

// Write implements modules.LogPort. A subprocess failure is logged at
// WARNING rather than surfaced as an action error: losing one log line is
// a tolerable degradation distinct from the fatal read-side failure the
// Adapter reports on journalctl exit.
func (w *Writer) Write(level modules.Severity, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout())
	defer cancel()
	bin, base := w.command()
	args := append(append([]string{}, base...), "-p", journalPriority(level))
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(message + "\n")
	if err := cmd.Run(); err != nil {
		w.logger().Warn("failed to write system log message", "level", level.String(), "err", err)
	}
}

// journalPriority maps a Severity onto the numeric journal/syslog priority
// levels 0 (EMERG) through 7 (DEBUG), matching
// original_source/src/infra/log.rs's print(priority, message) calls.
func journalPriority(level modules.Severity) string {
	switch level {
	case modules.Emerg:
		return "0"
	case modules.Alert:
		return "1"
	case modules.Crit:
		return "2"
	case modules.Err:
		return "3"
	case modules.Warning:
		return "4"
	case modules.Notice:
		return "5"
	case modules.Info:
		return "6"
	case modules.Debug:
		return "7"
	default:
		return "6"
	}
}
