// Package netfilter implements the netfilter ban subsystem (SPEC_FULL.md
// §4.4, component C5): the Backend port and its two concrete process
// drivers (ipset, nft), the durable Storage port and its file-backed
// implementation, and the Service that ties both together per the ban
// action's algorithm. Process invocation is grounded on idiomatic Go
// os/exec usage bounded by context.Context, since no example repo in this
// pack wraps ipset/nft specifically (see DESIGN.md).
package netfilter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/stefal/pyruse-go/internal/domain"
)

// Backend installs and removes bans in the kernel filter engine
// (SPEC_FULL.md §4.4). banUntil is nil for an unbounded ban.
type Backend interface {
	SetBan(ctx context.Context, set, ip string, banUntil *time.Time) error
	CancelBan(ctx context.Context, set, ip string) error
}

// IsIPv6 reports whether ip should be treated as IPv6, per the spec's rule:
// chosen by presence of ':' in the ip string.
func IsIPv6(ip string) bool { return strings.Contains(ip, ":") }

// runCommand executes name with args, bounded by ctx, and returns a
// PyruseError wrapping stderr on non-zero exit or spawn failure.
func runCommand(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return domain.WrapError(domain.ErrExternalIO,
			fmt.Sprintf("%s %s: %s", name, strings.Join(args, " "), msg), err)
	}
	return nil
}
