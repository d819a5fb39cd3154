package modules

import (
	"context"
	"time"

	"github.com/stefal/pyruse-go/internal/domain"
)

// tupleSlot resolves one DNAT tuple slot: either a record field to read, or
// (for the internal/destination slots only) a literal fallback value
// (SPEC_FULL.md §4.5, DNAT Capture).
type tupleSlot struct {
	field   string
	literal string
	hasAny  bool
}

func (s tupleSlot) resolve(record *domain.Record) (string, bool) {
	if s.field != "" {
		if v, ok := stringFromRecord(record, s.field); ok {
			return v, true
		}
	}
	if s.literal != "" {
		return s.literal, true
	}
	return "", false
}

// DnatCaptureAction implements the DNAT Capture action (SPEC_FULL.md §4.5):
// observes a source/internal/destination address-port tuple from the record
// and stores it in the DNAT cache with a sliding expiry.
type DnatCaptureAction struct {
	cache       DnatCache
	clock       domain.Clock
	srcAddr     tupleSlot
	srcPort     tupleSlot
	internalAdr tupleSlot
	internalPrt tupleSlot
	destAddr    tupleSlot
	destPort    tupleSlot
	keep        time.Duration
}

// NewDnatCaptureAction builds a constructor bound to a DnatCache and Clock.
func NewDnatCaptureAction(cache DnatCache, clock domain.Clock) func(domain.ModuleArgs) (domain.Action, error) {
	return func(args domain.ModuleArgs) (domain.Action, error) {
		saddr, ok := args.GetString("saddr")
		if !ok || saddr == "" {
			return nil, domain.NewError(domain.ErrConfig,
				"dnatCapture: a log field for the source address is required in \"saddr\"")
		}
		addrField := optionalString(args, "addr")
		addrValue := optionalString(args, "addrValue")
		if addrField == "" && addrValue == "" {
			return nil, domain.NewError(domain.ErrConfig,
				"dnatCapture: requires either a field (\"addr\") or a value (\"addrValue\") for the internal address")
		}
		keep, err := optionalSeconds(args, "keepSeconds")
		if err != nil {
			return nil, err
		}
		keepDuration := dnatDefaultRetention
		if keep != nil {
			keepDuration = *keep
		}
		return &DnatCaptureAction{
			cache:       cache,
			clock:       clock,
			srcAddr:     tupleSlot{field: saddr},
			srcPort:     tupleSlot{field: optionalString(args, "sport")},
			internalAdr: tupleSlot{field: addrField, literal: addrValue},
			internalPrt: tupleSlot{field: optionalString(args, "port"), literal: optionalString(args, "portValue")},
			destAddr:    tupleSlot{field: optionalString(args, "daddr"), literal: optionalString(args, "daddrValue")},
			destPort:    tupleSlot{field: optionalString(args, "dport"), literal: optionalString(args, "dportValue")},
			keep:        keepDuration,
		}, nil
	}
}

// dnatDefaultRetention mirrors internal/dnat.DefaultRetention; declared here
// too so this package's default does not depend on importing internal/dnat.
const dnatDefaultRetention = 63 * time.Second

func (a *DnatCaptureAction) Run(ctx context.Context, record *domain.Record) error {
	srcAddr, ok := a.srcAddr.resolve(record)
	if !ok {
		return nil
	}
	internalAddr, ok := a.internalAdr.resolve(record)
	if !ok {
		return nil
	}
	srcPort, _ := a.srcPort.resolve(record)
	internalPort, _ := a.internalPrt.resolve(record)
	destAddr, _ := a.destAddr.resolve(record)
	destPort, _ := a.destPort.resolve(record)
	a.cache.Put(DnatMapping{
		SrcAddr:      srcAddr,
		SrcPort:      srcPort,
		InternalAddr: internalAddr,
		InternalPort: internalPort,
		DestAddr:     destAddr,
		DestPort:     destPort,
		KeepUntil:    a.clock.Now().Add(a.keep),
	})
	return nil
}
