package modules

import (
	"context"
	"fmt"
	"time"

	"github.com/stefal/pyruse-go/internal/domain"
)

// CounterRaiseAction implements the Counter Raise action (SPEC_FULL.md
// §4.5): augments a named counter keyed by a record field, optionally
// writing the resulting count back into the record and extending its
// expiry by keepSeconds.
type CounterRaiseAction struct {
	counters    Counters
	clock       domain.Clock
	counterName string
	forField    string
	saveField   string
	keepSeconds *time.Duration
}

// NewCounterRaiseAction builds a constructor bound to a Counters backend and
// Clock, per the registry's closure-capturing-collaborators pattern
// (SPEC_FULL.md §4.5 rationale).
func NewCounterRaiseAction(counters Counters, clock domain.Clock) func(domain.ModuleArgs) (domain.Action, error) {
	return func(args domain.ModuleArgs) (domain.Action, error) {
		name, err := requiredString(args, "counter", "counterRaise")
		if err != nil {
			return nil, err
		}
		forField, err := requiredString(args, "for", "counterRaise")
		if err != nil {
			return nil, err
		}
		keep, err := optionalSeconds(args, "keepSeconds")
		if err != nil {
			return nil, err
		}
		return &CounterRaiseAction{
			counters:    counters,
			clock:       clock,
			counterName: name,
			forField:    forField,
			saveField:   optionalString(args, "save"),
			keepSeconds: keep,
		}, nil
	}
}

func (a *CounterRaiseAction) Run(ctx context.Context, record *domain.Record) error {
	key, ok := record.Get(a.forField)
	if !ok {
		return domain.NewError(domain.ErrRecordData,
			fmt.Sprintf("counterRaise: field %q missing from record", a.forField))
	}
	var expiry *time.Time
	if a.keepSeconds != nil {
		t := a.clock.Now().Add(*a.keepSeconds)
		expiry = &t
	}
	count := a.counters.Augment(CounterEntry{Name: a.counterName, Key: key}, CounterData{Count: 1, Expiry: expiry})
	if a.saveField != "" {
		record.Set(a.saveField, domain.IntValue(int64(count)))
	}
	return nil
}
