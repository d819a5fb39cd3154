package netfilter

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// IPSetBackend drives the kernel ipset subsystem via the ipset(8) CLI
// (SPEC_FULL.md §4.4.1).
type IPSetBackend struct {
	// Command is the configured command line, default
	// "/usr/bin/ipset -exist -quiet". The first whitespace-separated token
	// is the binary; the rest are fixed leading arguments.
	Command string
	// Timeout bounds each subprocess invocation; default 5s.
	Timeout time.Duration
}

func (b *IPSetBackend) command() (string, []string) {
	cmd := b.Command
	if cmd == "" {
		cmd = "/usr/bin/ipset -exist -quiet"
	}
	parts := strings.Fields(cmd)
	return parts[0], parts[1:]
}

func (b *IPSetBackend) timeout() time.Duration {
	if b.Timeout <= 0 {
		return 5 * time.Second
	}
	return b.Timeout
}

// SetBan invokes `ipset add <set> <ip> [timeout <seconds>]`.
func (b *IPSetBackend) SetBan(ctx context.Context, set, ip string, banUntil *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()
	bin, base := b.command()
	args := append(append([]string{}, base...), "add", set, ip)
	if banUntil != nil {
		secs := int64(time.Until(*banUntil).Seconds())
		if secs < 0 {
			secs = 0
		}
		args = append(args, "timeout", fmt.Sprintf("%d", secs))
	}
	return runCommand(ctx, bin, args)
}

// CancelBan invokes `ipset del <set> <ip>`.
func (b *IPSetBackend) CancelBan(ctx context.Context, set, ip string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()
	bin, base := b.command()
	args := append(append([]string{}, base...), "del", set, ip)
	return runCommand(ctx, bin, args)
}
