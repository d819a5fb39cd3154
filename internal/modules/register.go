package modules

import (
	"log/slog"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/registry"
)

// Dependencies bundles the concrete collaborators every registered
// module may need. cmd/pyruse builds one of these from the real
// stores/services and passes it to Register (SPEC_FULL.md §4.5, §4.6).
type Dependencies struct {
	Counters  Counters
	DNAT      DnatCache
	Netfilter BanService
	Logger    LogPort
	Mailer    Mailer
	Clock     domain.Clock
	Metrics   Metrics
	// DiagLogger receives operator-facing warnings (e.g. an unknown Log
	// action "level" name) that are distinct from records written through
	// Logger. Defaults to slog.Default() when nil.
	DiagLogger *slog.Logger
}

// Register adds every built-in filter and action to r, bound to deps. Names
// match the configuration's module identifiers (SPEC_FULL.md §6).
func Register(r *registry.Registry, deps Dependencies) {
	clock := deps.Clock
	if clock == nil {
		clock = domain.RealClock{}
	}

	r.RegisterFilter("equals", NewEqualsFilter)

	r.RegisterAction("counterRaise", NewCounterRaiseAction(deps.Counters, clock))
	r.RegisterAction("counterReset", NewCounterResetAction(deps.Counters, clock))
	r.RegisterAction("dnatCapture", NewDnatCaptureAction(deps.DNAT, clock))
	r.RegisterAction("dnatReplace", NewDnatReplaceAction(deps.DNAT))
	r.RegisterAction("log", NewLogAction(deps.Logger, deps.Metrics, deps.DiagLogger))
	r.RegisterAction("email", NewEmailAction(deps.Mailer, deps.Metrics))
	r.RegisterAction("netfilterBan", NewNetfilterBanAction("netfilterBan", "ipv4Set", "ipv6Set", deps.Netfilter, clock))
	r.RegisterAction("noop", NewNoopAction)
}
