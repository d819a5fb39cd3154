package modules

import (
	"context"

	"github.com/stefal/pyruse-go/internal/domain"
)

type dnatTupleGetter func(DnatMapping) string

var (
	dnatSrcAddrGetter      dnatTupleGetter = func(m DnatMapping) string { return m.SrcAddr }
	dnatSrcPortGetter      dnatTupleGetter = func(m DnatMapping) string { return m.SrcPort }
	dnatInternalAddrGetter dnatTupleGetter = func(m DnatMapping) string { return m.InternalAddr }
	dnatInternalPortGetter dnatTupleGetter = func(m DnatMapping) string { return m.InternalPort }
	dnatDestAddrGetter     dnatTupleGetter = func(m DnatMapping) string { return m.DestAddr }
	dnatDestPortGetter     dnatTupleGetter = func(m DnatMapping) string { return m.DestPort }
)

type dnatFieldGetter struct {
	field  string
	getter dnatTupleGetter
}

// DnatReplaceAction implements the DNAT Replace action (SPEC_FULL.md §4.5):
// matches a record against the cached DNAT mappings on one or more fields,
// and on the first match rewrites other fields with the mapping's captured
// source tuple.
type DnatReplaceAction struct {
	cache    DnatCache
	matchers []dnatFieldGetter
	updaters []dnatFieldGetter
}

// NewDnatReplaceAction builds a constructor bound to a DnatCache.
func NewDnatReplaceAction(cache DnatCache) func(domain.ModuleArgs) (domain.Action, error) {
	return func(args domain.ModuleArgs) (domain.Action, error) {
		var matchers []dnatFieldGetter
		if f := optionalString(args, "addr"); f != "" {
			matchers = append(matchers, dnatFieldGetter{f, dnatInternalAddrGetter})
		}
		if f := optionalString(args, "port"); f != "" {
			matchers = append(matchers, dnatFieldGetter{f, dnatInternalPortGetter})
		}
		if f := optionalString(args, "daddr"); f != "" {
			matchers = append(matchers, dnatFieldGetter{f, dnatDestAddrGetter})
		}
		if f := optionalString(args, "dport"); f != "" {
			matchers = append(matchers, dnatFieldGetter{f, dnatDestPortGetter})
		}
		if len(matchers) == 0 {
			return nil, domain.NewError(domain.ErrConfig,
				"dnatReplace: needs at least one log field on which to do the matching")
		}
		saddrInto, ok := args.GetString("saddrInto")
		if !ok || saddrInto == "" {
			return nil, domain.NewError(domain.ErrConfig,
				"dnatReplace: needs a log field to replace in \"saddrInto\"")
		}
		updaters := []dnatFieldGetter{{saddrInto, dnatSrcAddrGetter}}
		if f := optionalString(args, "sportInto"); f != "" {
			updaters = append(updaters, dnatFieldGetter{f, dnatSrcPortGetter})
		}
		return &DnatReplaceAction{cache: cache, matchers: matchers, updaters: updaters}, nil
	}
}

func (a *DnatReplaceAction) Run(ctx context.Context, record *domain.Record) error {
	for _, m := range a.matchers {
		if _, ok := record.Get(m.field); !ok {
			return nil
		}
	}
	for _, mapping := range a.cache.GetAll() {
		matched := true
		for _, m := range a.matchers {
			recordVal, _ := stringFromRecord(record, m.field)
			if recordVal != m.getter(mapping) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		for _, u := range a.updaters {
			if v := u.getter(mapping); v != "" {
				record.Set(u.field, domain.StringValue(v))
			}
		}
		return nil
	}
	return nil
}
