package modules

import (
	"context"
	"fmt"
	"time"

	"github.com/stefal/pyruse-go/internal/domain"
)

// CounterResetAction implements the Counter Reset action (SPEC_FULL.md
// §4.5): same args as Counter Raise except the duration option is named
// graceSeconds.
type CounterResetAction struct {
	counters     Counters
	clock        domain.Clock
	counterName  string
	forField     string
	saveField    string
	graceSeconds *time.Duration
}

// NewCounterResetAction mirrors NewCounterRaiseAction's construction shape.
func NewCounterResetAction(counters Counters, clock domain.Clock) func(domain.ModuleArgs) (domain.Action, error) {
	return func(args domain.ModuleArgs) (domain.Action, error) {
		name, err := requiredString(args, "counter", "counterReset")
		if err != nil {
			return nil, err
		}
		forField, err := requiredString(args, "for", "counterReset")
		if err != nil {
			return nil, err
		}
		grace, err := optionalSeconds(args, "graceSeconds")
		if err != nil {
			return nil, err
		}
		return &CounterResetAction{
			counters:     counters,
			clock:        clock,
			counterName:  name,
			forField:     forField,
			saveField:    optionalString(args, "save"),
			graceSeconds: grace,
		}, nil
	}
}

func (a *CounterResetAction) Run(ctx context.Context, record *domain.Record) error {
	key, ok := record.Get(a.forField)
	if !ok {
		return domain.NewError(domain.ErrRecordData,
			fmt.Sprintf("counterReset: field %q missing from record", a.forField))
	}
	var graceUntil *time.Time
	if a.graceSeconds != nil {
		t := a.clock.Now().Add(*a.graceSeconds)
		graceUntil = &t
	}
	count := a.counters.Reset(CounterEntry{Name: a.counterName, Key: key}, graceUntil)
	if a.saveField != "" {
		record.Set(a.saveField, domain.IntValue(int64(count)))
	}
	return nil
}
