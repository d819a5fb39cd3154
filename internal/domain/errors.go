// Package domain errors.go implements the single string-bearing error type
// with failure kinds called for by SPEC_FULL.md §2 C10 / §7. The teacher
// (haukened-gone) reuses plain sentinel errors.New values across layers
// (this file, originally); this daemon's error-handling policy needs
// per-record structured diagnostics (the workflow builder's "incomplete
// configuration" error lists every dangling site), which a fixed sentinel
// set cannot express, so the sentinel idea is generalized into one
// kind-tagged type instead of abandoned.
package domain

import "fmt"

// ErrorKind classifies a PyruseError per the taxonomy in SPEC_FULL.md §7.
type ErrorKind int

const (
	// ErrConfig covers missing required args, unknown module names,
	// configuration loops, dangling chain references, and empty
	// configuration. Always fatal at startup.
	ErrConfig ErrorKind = iota
	// ErrConfigValue covers a malformed or disallowed raw config value,
	// e.g. a fractional number where an integer was expected (§3.1).
	// Always fatal at parse time.
	ErrConfigValue
	// ErrRecordData covers an expected field missing on a record when an
	// action requires it. Never fatal; stops traversal for one record.
	ErrRecordData
	// ErrExternalIO covers subprocess spawn/write failures and storage
	// file read/write failures. Never fatal; stops traversal for one
	// record.
	ErrExternalIO
	// ErrLogSource covers a fatal log-source initialization failure.
	// Transient read errors are logged and retried, not wrapped in this
	// kind.
	ErrLogSource
)

func (k ErrorKind) String() string {
	switch k {
	case ErrConfig:
		return "config"
	case ErrConfigValue:
		return "config_value"
	case ErrRecordData:
		return "record_data"
	case ErrExternalIO:
		return "external_io"
	case ErrLogSource:
		return "log_source"
	default:
		return "unknown"
	}
}

// PyruseError is the single error type used throughout the pipeline engine.
// It carries a Kind for programmatic branching (e.g. "was this fatal?") and
// a human-readable message; Unwrap exposes any underlying cause.
type PyruseError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *PyruseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PyruseError) Unwrap() error { return e.Cause }

// NewError constructs a PyruseError with no underlying cause.
func NewError(kind ErrorKind, message string) *PyruseError {
	return &PyruseError{Kind: kind, Message: message}
}

// WrapError constructs a PyruseError wrapping cause.
func WrapError(kind ErrorKind, message string, cause error) *PyruseError {
	return &PyruseError{Kind: kind, Message: message, Cause: cause}
}

// IsFatal reports whether an error of this kind must terminate the daemon
// per the policy in SPEC_FULL.md §7 ("construction errors are always fatal;
// per-record errors are never fatal").
func (k ErrorKind) IsFatal() bool {
	switch k {
	case ErrConfig, ErrConfigValue, ErrLogSource:
		return true
	default:
		return false
	}
}
