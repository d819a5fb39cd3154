package modules

import (
	"strconv"
	"time"

	"github.com/stefal/pyruse-go/internal/domain"
)

// requiredString reads a required string arg, or a config error.
func requiredString(args domain.ModuleArgs, name, module string) (string, error) {
	s, ok := args.GetString(name)
	if !ok || s == "" {
		return "", domain.NewError(domain.ErrConfig, module+": \""+name+"\" is required")
	}
	return s, nil
}

// optionalString reads an optional string arg, returning "" if absent.
func optionalString(args domain.ModuleArgs, name string) string {
	s, _ := args.GetString(name)
	return s
}

// stringFromRecord reads a field from record and stringifies it the way the
// Equals filter's underlying Value comparison does not need to: strings pass
// through, ints and timestamps are rendered, everything else is unacceptable
// (SPEC_FULL.md §4.5, DNAT actions).
func stringFromRecord(record *domain.Record, field string) (string, bool) {
	v, ok := record.Get(field)
	if !ok {
		return "", false
	}
	switch v.Kind() {
	case domain.KindString:
		s, _ := v.AsString()
		return s, true
	case domain.KindInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10), true
	case domain.KindTime:
		t, _ := v.AsTime()
		return strconv.FormatInt(t.Unix(), 10), true
	default:
		return "", false
	}
}

// optionalSeconds reads an optional non-negative integer-seconds arg and
// returns it as a *time.Duration (nil if absent).
func optionalSeconds(args domain.ModuleArgs, name string) (*time.Duration, error) {
	v, ok := args.Get(name)
	if !ok {
		return nil, nil
	}
	i, ok := v.AsInt()
	if !ok {
		return nil, domain.NewError(domain.ErrConfig, "\""+name+"\" must be an integer number of seconds")
	}
	if i < 0 {
		return nil, domain.NewError(domain.ErrConfig, "\""+name+"\" must be non-negative")
	}
	d := time.Duration(i) * time.Second
	return &d, nil
}
