// Package modules implements the concrete Action and Filter modules
// (SPEC_FULL.md §4.5, component C7): equals, counter raise/reset, DNAT
// capture/replace, log, email, netfilter ban, and noop. Grounded on the
// teacher's internal/app.Service orchestration style (haukened-gone): thin
// structs holding injected collaborators, validated once at construction,
// with no internal locking (the single-threaded execution model in
// SPEC_FULL.md §5 makes that the caller's job, not the module's).
package modules

import (
	"context"
	"time"

	"github.com/stefal/pyruse-go/internal/domain"
)

// Severity is a journal-style log level, used by the Log action
// (SPEC_FULL.md §4.5).
type Severity int

const (
	Emerg Severity = iota
	Alert
	Crit
	Err
	Warning
	Notice
	Info
	Debug
)

// String returns the canonical uppercase journal level name.
func (s Severity) String() string {
	switch s {
	case Emerg:
		return "EMERG"
	case Alert:
		return "ALERT"
	case Crit:
		return "CRIT"
	case Err:
		return "ERR"
	case Warning:
		return "WARNING"
	case Notice:
		return "NOTICE"
	case Info:
		return "INFO"
	case Debug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// ParseSeverity maps a level name onto a Severity. Unknown names yield Info
// plus ok=false so the caller can warn and fall back (SPEC_FULL.md §4.5: log
// action args "level ... unknown yields INFO with a warning on stderr").
func ParseSeverity(name string) (Severity, bool) {
	switch name {
	case "EMERG":
		return Emerg, true
	case "ALERT":
		return Alert, true
	case "CRIT":
		return Crit, true
	case "ERR":
		return Err, true
	case "WARNING":
		return Warning, true
	case "NOTICE":
		return Notice, true
	case "INFO":
		return Info, true
	case "DEBUG":
		return Debug, true
	default:
		return Info, false
	}
}

// LogPort publishes a rendered message to the system log at a severity
// (SPEC_FULL.md §6).
type LogPort interface {
	Write(level Severity, message string)
}

// EmailMessage is the mailer's input contract (SPEC_FULL.md §6).
type EmailMessage struct {
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers an EmailMessage (SPEC_FULL.md §6).
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Counters is the subset of internal/counter.Store's API the counter
// actions depend on, declared here (rather than imported as a concrete
// type) so this package states its own dependency surface explicitly.
type Counters interface {
	Augment(entry CounterEntry, data CounterData) uint64
	Reset(entry CounterEntry, graceUntil *time.Time) uint64
}

// CounterEntry and CounterData mirror internal/counter.Entry/Data's shape.
// Kept as distinct types (rather than a re-export) to keep this package's
// import graph acyclic and its contract self-contained; cmd/pyruse
// is responsible for handing modules a Counters adapter backed by the real
// store.
type CounterEntry struct {
	Name string
	Key  domain.Value
}

type CounterData struct {
	Count  uint64
	Expiry *time.Time
}

// DnatCache is the subset of internal/dnat.Cache's API the DNAT actions
// depend on.
type DnatCache interface {
	Put(m DnatMapping)
	GetAll() []DnatMapping
}

// DnatMapping mirrors internal/dnat.Mapping's shape.
type DnatMapping struct {
	SrcAddr, SrcPort           string
	InternalAddr, InternalPort string
	DestAddr, DestPort         string
	KeepUntil                  time.Time
}

// BanService is the subset of internal/netfilter.Service's API the
// netfilter ban action depends on.
type BanService interface {
	Ban(ctx context.Context, set, ip string, banUntil *time.Time) error
}

// Metrics reports a named counter increment (SPEC_FULL.md §4.9, component
// C14: email/log sends). Declared locally, matching internal/netfilter's
// own minimal Metrics interface (internal/counter's takes a delta), so this package
// depends only on *pipeline.Metrics's shape, not the concrete type.
type Metrics interface {
	Inc(name string)
}
