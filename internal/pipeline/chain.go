package pipeline

import "github.com/stefal/pyruse-go/internal/domain"

// Step is one declarative step of a chain (SPEC_FULL.md §4.8): exactly one
// of Filter/Action is set, naming a module in the matching registry
// namespace. Then/Else, when set, name the chain to jump to; when unset,
// Then defaults to falling through to the next step in the same chain (or
// terminal, if last) and Else defaults to falling through to the next
// chain declared in the configuration (or terminal, if none).
type Step struct {
	Filter string
	Action string
	Args   domain.ModuleArgs
	Then   *string
	Else   *string
}

// ModuleName returns the name of the filter or action this step invokes,
// used to build a node's display name.
func (s Step) ModuleName() string {
	if s.Filter != "" {
		return s.Filter
	}
	return s.Action
}

// Chain is one named, ordered list of steps (SPEC_FULL.md §4.6).
type Chain struct {
	Name  string
	Steps []Step
}
