// Package journal implements the concrete reference log source and log
// sink adapters (SPEC_FULL.md §6, components C12/C13): a journalctl -f -o
// json follower producing domain.Record values, and a subprocess-based
// writer publishing rendered messages back to the system log. Grounded on
// original_source/src/infra/log.rs's per-field type-mapper table for the
// reader, and on the teacher's os/exec-driven subprocess style in
// internal/netfilter (context-bounded, stderr-captured) for both.
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stefal/pyruse-go/internal/domain"
)

// fieldKind selects how a raw journal field's string value converts to a
// domain.Value, mirroring original_source/src/infra/log.rs's
// JournalFieldMapper table.
type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindTime
)

// journalFields is the canonical systemd-journal field set (SPEC_FULL.md
// §6). Fields not listed here are dropped, per spec.
var journalFields = map[string]fieldKind{
	"MESSAGE": kindString, "MESSAGE_ID": kindString, "PRIORITY": kindInt,
	"CODE_FILE": kindString, "CODE_LINE": kindInt, "CODE_FUNC": kindString,
	"ERRNO": kindInt, "INVOCATION_ID": kindString, "USER_INVOCATION_ID": kindString,
	"SYSLOG_FACILITY": kindInt, "SYSLOG_IDENTIFIER": kindString, "SYSLOG_PID": kindInt,
	"SYSLOG_TIMESTAMP": kindTime, "SYSLOG_RAW": kindString, "DOCUMENTATION": kindString,
	"TID": kindInt, "_PID": kindInt, "_UID": kindInt, "_GID": kindInt,
	"_COMM": kindString, "_EXE": kindString, "_CMDLINE": kindString,
	"_CAP_EFFECTIVE": kindString, "_AUDIT_SESSION": kindString, "_AUDIT_LOGINUID": kindInt,
	"_SYSTEMD_CGROUP": kindString, "_SYSTEMD_SLICE": kindString, "_SYSTEMD_UNIT": kindString,
	"_SYSTEMD_USER_UNIT": kindString, "_SYSTEMD_USER_SLICE": kindString, "_SYSTEMD_SESSION": kindString,
	"_SYSTEMD_OWNER_UID": kindInt, "_SELINUX_CONTEXT": kindString,
	"_SOURCE_REALTIME_TIMESTAMP": kindTime, "_BOOT_ID": kindString, "_MACHINE_ID": kindString,
	"_SYSTEMD_INVOCATION_ID": kindString, "_HOSTNAME": kindString, "_TRANSPORT": kindString,
	"_STREAM_ID": kindString, "_LINE_BREAK": kindString, "_NAMESPACE": kindString,
	"_KERNEL_DEVICE": kindString, "_KERNEL_SUBSYSTEM": kindString, "_UDEV_SYSNAME": kindString,
	"_UDEV_DEVNODE": kindString, "_UDEV_DEVLINK": kindString,
	"COREDUMP_UNIT": kindString, "COREDUMP_USER_UNIT": kindString,
	"OBJECT_PID": kindInt, "OBJECT_UID": kindInt, "OBJECT_GID": kindInt,
	"OBJECT_COMM": kindString, "OBJECT_EXE": kindString, "OBJECT_CMDLINE": kindString,
	"OBJECT_AUDIT_SESSION": kindString, "OBJECT_AUDIT_LOGINUID": kindInt,
	"OBJECT_SYSTEMD_CGROUP": kindString, "OBJECT_SYSTEMD_SESSION": kindString,
	"OBJECT_SYSTEMD_OWNER_UID": kindInt, "OBJECT_SYSTEMD_UNIT": kindString,
	"OBJECT_SYSTEMD_USER_UNIT": kindString,
	"__CURSOR": kindString, "__REALTIME_TIMESTAMP": kindTime, "__MONOTONIC_TIMESTAMP": kindTime,
}

// Adapter follows `journalctl -f -o json --since now` (or an overridden
// command) and maps the canonical journal fields onto domain.Record keys
// (SPEC_FULL.md §6, C12). A malformed line is a transient failure: it is
// logged and skipped; the subprocess exiting ends the stream with a fatal
// ErrLogSource, per §7.
type Adapter struct {
	// Command overrides the journalctl invocation. Defaults to
	// "journalctl -f -o json --since now".
	Command string
	Logger  *slog.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
	dec *json.Decoder
}

func (a *Adapter) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *Adapter) command() (string, []string) {
	c := a.Command
	if c == "" {
		c = "journalctl -f -o json --since now"
	}
	parts := strings.Fields(c)
	return parts[0], parts[1:]
}

// Open starts the journalctl subprocess. It must be called once before the
// first call to Next; a failure here is the fatal log-source
// initialization error §6's exit code 4 covers.
func (a *Adapter) Open(ctx context.Context) error {
	bin, args := a.command()
	cmd := exec.CommandContext(ctx, bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return domain.WrapError(domain.ErrLogSource, "open journal stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return domain.WrapError(domain.ErrLogSource, "start "+bin, err)
	}
	a.cmd = cmd
	a.dec = json.NewDecoder(bufio.NewReader(stdout))
	return nil
}

// Next blocks until the next journal entry is available and returns it as
// a Record. It implements the Next(ctx) (*domain.Record, error) shape the
// Entry Loop's LogSource port expects (internal/ingest).
func (a *Adapter) Next(ctx context.Context) (*domain.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for {
		var raw map[string]any
		if err := a.dec.Decode(&raw); err != nil {
			if err == io.EOF {
				waitErr := a.cmd.Wait()
				return nil, domain.WrapError(domain.ErrLogSource, "journalctl exited", waitErr)
			}
			a.logger().Warn("skipping malformed journal line", "err", err)
			continue
		}
		return mapEntry(raw), nil
	}
}

// Close terminates the subprocess, if one is running.
func (a *Adapter) Close() error {
	if a.cmd == nil || a.cmd.Process == nil {
		return nil
	}
	return a.cmd.Process.Kill()
}

func mapEntry(raw map[string]any) *domain.Record {
	rec := domain.NewRecord()
	for k, v := range raw {
		kind, ok := journalFields[k]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch kind {
		case kindInt:
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				rec.Set(k, domain.IntValue(i))
			} else {
				rec.Set(k, domain.StringValue(s))
			}
		case kindTime:
			if t, ok := parseJournalTime(s); ok {
				rec.Set(k, domain.TimeValue(t))
			} else {
				rec.Set(k, domain.StringValue(s))
			}
		default:
			rec.Set(k, domain.StringValue(s))
		}
	}
	return rec
}

// parseJournalTime accepts either an RFC3339 timestamp or journalctl's
// microseconds-since-epoch decimal string, falling back to "not a time"
// the same way original_source's DATE_MAPPER falls back to a string Value.
func parseJournalTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	if micros, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMicro(micros).UTC(), true
	}
	return time.Time{}, false
}
