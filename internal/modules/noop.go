package modules

import (
	"context"

	"github.com/stefal/pyruse-go/internal/domain"
)

// NoopAction does nothing; useful as an explicit terminal step in a chain
// (SPEC_FULL.md §4.5).
type NoopAction struct{}

// NewNoopAction ignores its args and always succeeds.
func NewNoopAction(domain.ModuleArgs) (domain.Action, error) {
	return NoopAction{}, nil
}

func (NoopAction) Run(ctx context.Context, record *domain.Record) error { return nil }
