package modules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefal/pyruse-go/internal/domain"
)

// fakeClock lets tests pin "now" deterministically.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

// fakeCounters is a minimal in-memory Counters double for action tests.
type fakeCounters struct {
	augmented []CounterEntry
	reset     []CounterEntry
	count     uint64
}

func (f *fakeCounters) Augment(entry CounterEntry, data CounterData) uint64 {
	f.augmented = append(f.augmented, entry)
	f.count += data.Count
	return f.count
}

func (f *fakeCounters) Reset(entry CounterEntry, graceUntil *time.Time) uint64 {
	f.reset = append(f.reset, entry)
	f.count = 0
	return f.count
}

func TestCounterRaiseAugmentsAndSaves(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	counters := &fakeCounters{}
	ctor := NewCounterRaiseAction(counters, &fakeClock{now: now})

	args := newArgs(map[string]domain.Value{
		"counter": domain.StringValue("failedLogins"),
		"for":     domain.StringValue("srcIP"),
		"save":    domain.StringValue("count"),
	})
	action, err := ctor(args)
	require.NoError(t, err)

	record := newArgs(map[string]domain.Value{"srcIP": domain.StringValue("1.2.3.4")})
	require.NoError(t, action.Run(context.Background(), record))

	require.Len(t, counters.augmented, 1)
	assert.Equal(t, "failedLogins", counters.augmented[0].Name)
	v, ok := record.Get("count")
	require.True(t, ok)
	i, _ := v.AsInt()
	assert.Equal(t, int64(1), i)
}

func TestCounterRaiseMissingFieldIsError(t *testing.T) {
	t.Parallel()
	counters := &fakeCounters{}
	ctor := NewCounterRaiseAction(counters, &fakeClock{now: time.Now()})
	action, err := ctor(newArgs(map[string]domain.Value{
		"counter": domain.StringValue("c"),
		"for":     domain.StringValue("missing"),
	}))
	require.NoError(t, err)

	record := domain.NewRecord()
	err = action.Run(context.Background(), record)
	assert.Error(t, err)
}

func TestCounterRaiseRequiresCounterAndFor(t *testing.T) {
	t.Parallel()
	counters := &fakeCounters{}
	ctor := NewCounterRaiseAction(counters, &fakeClock{})
	_, err := ctor(newArgs(map[string]domain.Value{"for": domain.StringValue("x")}))
	assert.Error(t, err)
	_, err = ctor(newArgs(map[string]domain.Value{"counter": domain.StringValue("x")}))
	assert.Error(t, err)
}

func TestCounterRaiseKeepSecondsMustBeNonNegative(t *testing.T) {
	t.Parallel()
	counters := &fakeCounters{}
	ctor := NewCounterRaiseAction(counters, &fakeClock{})
	_, err := ctor(newArgs(map[string]domain.Value{
		"counter":     domain.StringValue("c"),
		"for":         domain.StringValue("f"),
		"keepSeconds": domain.IntValue(-1),
	}))
	assert.Error(t, err)
}
