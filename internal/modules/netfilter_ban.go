package modules

import (
	"context"
	"strings"
	"time"

	"github.com/stefal/pyruse-go/internal/domain"
)

// NetfilterBanAction implements the Netfilter Ban action family (SPEC_FULL.md
// §4.5, §4.4): reads an IP address from a record field, picks the IPv4 or
// IPv6 set by whether the address contains a colon, and delegates the
// store/cancel/set reconciliation to a BanService.
type NetfilterBanAction struct {
	backend    BanService
	clock      domain.Clock
	ipv4Set    string
	ipv6Set    string
	field      string
	banSeconds *int64
}

// NewNetfilterBanAction builds a constructor bound to a BanService and Clock.
// moduleAlias names the action in error messages (e.g. "netfilterBan");
// ipv4ArgName/ipv6ArgName let ipset- and nft-flavoured aliases of the same
// action use differently-named set args if the configuration calls for it.
func NewNetfilterBanAction(moduleAlias, ipv4ArgName, ipv6ArgName string, backend BanService, clock domain.Clock) func(domain.ModuleArgs) (domain.Action, error) {
	return func(args domain.ModuleArgs) (domain.Action, error) {
		ipv4Set, ok := args.GetString(ipv4ArgName)
		if !ok || ipv4Set == "" {
			return nil, domain.NewError(domain.ErrConfig,
				moduleAlias+": needs an IPv4 set name in \""+ipv4ArgName+"\"")
		}
		ipv6Set, ok := args.GetString(ipv6ArgName)
		if !ok || ipv6Set == "" {
			return nil, domain.NewError(domain.ErrConfig,
				moduleAlias+": needs an IPv6 set name in \""+ipv6ArgName+"\"")
		}
		field, ok := args.GetString("IP")
		if !ok || field == "" {
			return nil, domain.NewError(domain.ErrConfig,
				moduleAlias+": needs a field to read the IP address from, in \"IP\"")
		}
		var banSeconds *int64
		if v, ok := args.Get("banSeconds"); ok {
			i, ok := v.AsInt()
			if !ok || i < 0 {
				return nil, domain.NewError(domain.ErrConfig, moduleAlias+": \"banSeconds\" must be a non-negative integer")
			}
			banSeconds = &i
		}
		return &NetfilterBanAction{
			backend:    backend,
			clock:      clock,
			ipv4Set:    ipv4Set,
			ipv6Set:    ipv6Set,
			field:      field,
			banSeconds: banSeconds,
		}, nil
	}
}

func (a *NetfilterBanAction) Run(ctx context.Context, record *domain.Record) error {
	v, ok := record.Get(a.field)
	if !ok {
		return nil
	}
	ip, ok := v.AsString()
	if !ok {
		return nil
	}
	set := a.ipv4Set
	if strings.Contains(ip, ":") {
		set = a.ipv6Set
	}
	var banUntil *time.Time
	if a.banSeconds != nil {
		t := a.clock.Now().Add(time.Duration(*a.banSeconds) * time.Second)
		banUntil = &t
	}
	return a.backend.Ban(ctx, set, ip, banUntil)
}
