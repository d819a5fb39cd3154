package domain

import (
	"context"
	"time"
)

// ModuleArgs is the declarative, construction-time configuration for a
// module: a Record supplied from the parsed configuration file. Unknown keys
// are tolerated by convention; a constructor that requires a key missing
// from args must fail construction (SPEC_FULL.md §3).
type ModuleArgs = *Record

// Filter maps (record) -> boolean. It is pure with respect to external
// resources; it may mutate the record only incidentally (e.g. test doubles),
// never as part of its documented contract. Filter.Run never itself
// surfaces an error to the workflow (SPEC_FULL.md §4.5).
type Filter interface {
	Run(ctx context.Context, record *Record) bool
}

// Action maps (record) -> success|error, with side effects on shared
// resources. It may also mutate the record (e.g. to save a computed value
// into a field).
type Action interface {
	Run(ctx context.Context, record *Record) error
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(ctx context.Context, record *Record) bool

func (f FilterFunc) Run(ctx context.Context, record *Record) bool { return f(ctx, record) }

// ActionFunc adapts a plain function to the Action interface.
type ActionFunc func(ctx context.Context, record *Record) error

func (f ActionFunc) Run(ctx context.Context, record *Record) error { return f(ctx, record) }

// Clock abstracts time to enable deterministic testing of expiry and grace
// logic across the counter store, DNAT cache, and ban subsystem. Grounded on
// the teacher's internal/app.Clock port.
type Clock interface {
	Now() time.Time
}
