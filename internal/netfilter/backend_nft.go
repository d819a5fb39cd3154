package netfilter

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NFTBackend drives the kernel nftables subsystem via the nft(8) CLI
// (SPEC_FULL.md §4.4.1).
type NFTBackend struct {
	// Command is the configured command line, default "/usr/bin/nft".
	Command string
	// Table is the nftables table name (required).
	Table string
	// Timeout bounds each subprocess invocation; default 5s.
	Timeout time.Duration
}

func (b *NFTBackend) command() (string, []string) {
	cmd := b.Command
	if cmd == "" {
		cmd = "/usr/bin/nft"
	}
	parts := strings.Fields(cmd)
	return parts[0], parts[1:]
}

func (b *NFTBackend) timeout() time.Duration {
	if b.Timeout <= 0 {
		return 5 * time.Second
	}
	return b.Timeout
}

// SetBan invokes `nft add element inet <table> <set> { <ip> [timeout <n>s] }`.
func (b *NFTBackend) SetBan(ctx context.Context, set, ip string, banUntil *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()
	bin, base := b.command()
	elem := ip
	if banUntil != nil {
		secs := int64(time.Until(*banUntil).Seconds())
		if secs < 0 {
			secs = 0
		}
		elem = fmt.Sprintf("%s timeout %ds", ip, secs)
	}
	args := append(append([]string{}, base...), "add", "element", "inet", b.Table, set,
		fmt.Sprintf("{ %s }", elem))
	return runCommand(ctx, bin, args)
}

// CancelBan invokes `nft delete element inet <table> <set> { <ip> }`.
func (b *NFTBackend) CancelBan(ctx context.Context, set, ip string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()
	bin, base := b.command()
	args := append(append([]string{}, base...), "delete", "element", "inet", b.Table, set,
		fmt.Sprintf("{ %s }", ip))
	return runCommand(ctx, bin, args)
}
