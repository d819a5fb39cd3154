package modules

import (
	"context"

	"github.com/stefal/pyruse-go/internal/domain"
)

// EqualsFilter implements the Equals filter (SPEC_FULL.md §4.5): true iff
// the record has the configured field and its value equals the configured
// value; false (not an error) if the field is missing.
type EqualsFilter struct {
	field string
	value domain.Value
}

// NewEqualsFilter validates args (`field` string required, `value` required)
// and returns the constructed filter.
func NewEqualsFilter(args domain.ModuleArgs) (domain.Filter, error) {
	field, ok := args.GetString("field")
	if !ok || field == "" {
		return nil, domain.NewError(domain.ErrConfig, "equals: \"field\" is required")
	}
	value, ok := args.Get("value")
	if !ok {
		return nil, domain.NewError(domain.ErrConfig, "equals: \"value\" is required")
	}
	return &EqualsFilter{field: field, value: value}, nil
}

func (f *EqualsFilter) Run(ctx context.Context, record *domain.Record) bool {
	v, ok := record.Get(f.field)
	if !ok {
		return false
	}
	return v.Equal(f.value)
}
