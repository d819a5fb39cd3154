// Package email implements the concrete Mailer adapter (SPEC_FULL.md §6,
// component C13): an RFC 5322 multipart/alternative message builder
// delivered to a configured sendmail-style subprocess. Grounded on
// original_source/src/infra/email.rs's ProcessEmailAdapter: same "from",
// "to", "sendmail" ambient config shape, same header set, same
// quoted-printable + UTF-8-subject encoding.
package email

import (
	"fmt"
	"strings"

	"github.com/stefal/pyruse-go/internal/domain"
)

// Config is the parsed "mailer" ambient configuration section.
type Config struct {
	From    string
	To      []string
	Command []string
}

const defaultSendmailCommand = "/usr/bin/sendmail -t"

// ParseConfig validates and converts the raw "mailer" config map. Unlike
// original_source (which panics if "sendmail" is absent), SPEC_FULL.md §6
// gives it a default so a minimal configuration still produces a working
// daemon.
func ParseConfig(raw map[string]any) (Config, error) {
	from, ok := raw["from"].(string)
	if !ok || from == "" {
		return Config{}, domain.NewError(domain.ErrConfigValue, `mailer config requires a string "from" address`)
	}

	to, err := stringList(raw["to"])
	if err != nil {
		return Config{}, domain.WrapError(domain.ErrConfigValue, `mailer config "to"`, err)
	}
	if len(to) == 0 {
		return Config{}, domain.NewError(domain.ErrConfigValue, `mailer config requires at least one "to" recipient`)
	}

	cmd, err := stringList(raw["sendmail"])
	if err != nil {
		return Config{}, domain.WrapError(domain.ErrConfigValue, `mailer config "sendmail"`, err)
	}
	if len(cmd) == 0 {
		cmd = strings.Fields(defaultSendmailCommand)
	}

	return Config{From: from, To: to, Command: cmd}, nil
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string, got %T", e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a string or list of strings, got %T", v)
	}
}
