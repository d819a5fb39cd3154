// Package registry implements the module registry (SPEC_FULL.md §4.5,
// component C6): a name->constructor map producing boxed Action or Filter
// objects. Grounded on the teacher's port-interface style
// (internal/store/ports.go, haukened-gone), generalized from a single
// concrete port to an open, string-addressed constructor table.
package registry

import (
	"fmt"

	"github.com/stefal/pyruse-go/internal/domain"
)

// Module is either a Filter or an Action, never both (SPEC_FULL.md §4.5).
// Exactly one of Filter/Action is non-nil.
type Module struct {
	Filter domain.Filter
	Action domain.Action
}

// IsFilter reports whether this Module is the filter variant.
func (m Module) IsFilter() bool { return m.Filter != nil }

// FilterConstructor builds a Filter from its declarative args.
type FilterConstructor func(args domain.ModuleArgs) (domain.Filter, error)

// ActionConstructor builds an Action from its declarative args.
type ActionConstructor func(args domain.ModuleArgs) (domain.Action, error)

// Registry maps module names to constructors. Filters and actions occupy
// separate namespaces (a step in the configuration says explicitly whether
// it names a "filter" or an "action", SPEC_FULL.md §6), so a single name may
// legally be registered in both.
type Registry struct {
	filters map[string]FilterConstructor
	actions map[string]ActionConstructor
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		filters: make(map[string]FilterConstructor),
		actions: make(map[string]ActionConstructor),
	}
}

// RegisterFilter adds or replaces the constructor for a filter name.
func (r *Registry) RegisterFilter(name string, ctor FilterConstructor) {
	r.filters[name] = ctor
}

// RegisterAction adds or replaces the constructor for an action name.
func (r *Registry) RegisterAction(name string, ctor ActionConstructor) {
	r.actions[name] = ctor
}

// NewFilter constructs a named filter. Returns a config error if the name is
// unknown or construction fails (SPEC_FULL.md §4.5, §7: construction errors
// are always fatal).
func (r *Registry) NewFilter(name string, args domain.ModuleArgs) (domain.Filter, error) {
	ctor, ok := r.filters[name]
	if !ok {
		return nil, domain.NewError(domain.ErrConfig, fmt.Sprintf("unknown filter %q", name))
	}
	f, err := ctor(args)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfig, fmt.Sprintf("construct filter %q", name), err)
	}
	return f, nil
}

// NewAction constructs a named action. Returns a config error if the name is
// unknown or construction fails.
func (r *Registry) NewAction(name string, args domain.ModuleArgs) (domain.Action, error) {
	ctor, ok := r.actions[name]
	if !ok {
		return nil, domain.NewError(domain.ErrConfig, fmt.Sprintf("unknown action %q", name))
	}
	a, err := ctor(args)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfig, fmt.Sprintf("construct action %q", name), err)
	}
	return a, nil
}
