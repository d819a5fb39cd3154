package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/modules"
	"github.com/stefal/pyruse-go/internal/pipeline"
	"github.com/stefal/pyruse-go/internal/registry"
)

func realRegistry() *registry.Registry {
	r := registry.New()
	modules.Register(r, modules.Dependencies{})
	return r
}

func equalsArgs(field, value string) *domain.Record {
	args := domain.NewRecord()
	args.Set("field", domain.StringValue(field))
	args.Set("value", domain.StringValue(value))
	return args
}

// TestFilterThenActionImplicitChain covers SPEC_FULL.md §8 end-to-end
// scenario 1: a filter's false result falls through, via the dangling
// None-keyed else-edge, to the next declared chain's first node.
func TestFilterThenActionImplicitChain(t *testing.T) {
	t.Parallel()
	wf, err := pipeline.Build([]pipeline.Chain{
		{Name: "A", Steps: []pipeline.Step{{Filter: "equals", Args: equalsArgs("k", "v")}}},
		{Name: "B", Steps: []pipeline.Step{{Action: "noop", Args: domain.NewRecord()}}},
	}, realRegistry())
	require.NoError(t, err)

	matching := domain.NewRecord()
	matching.Set("k", domain.StringValue("v"))
	require.NoError(t, wf.Run(context.Background(), matching))
	assert.Equal(t, 1, matching.Len(), "record must be unchanged when the filter matches")

	nonMatching := domain.NewRecord()
	nonMatching.Set("k", domain.StringValue("x"))
	require.NoError(t, wf.Run(context.Background(), nonMatching))
	assert.Equal(t, 1, nonMatching.Len(), "noop does not mutate the record, but traversal must reach it")
}

// TestActionErrorStopsTraversalButIsReturned covers the action-error
// termination rule from SPEC_FULL.md §4.6/§7: the workflow stops at that
// node and surfaces the error, but the caller (entry loop) decides it is
// non-fatal and moves on to the next record.
func TestActionErrorStopsTraversalButIsReturned(t *testing.T) {
	t.Parallel()
	wf, err := pipeline.Build([]pipeline.Chain{
		{Name: "A", Steps: []pipeline.Step{
			{Action: "counterRaise", Args: func() *domain.Record {
				a := domain.NewRecord()
				a.Set("counter", domain.StringValue("c"))
				a.Set("for", domain.StringValue("missingField"))
				return a
			}()},
		}},
	}, realRegistry())
	require.NoError(t, err)

	record := domain.NewRecord()
	runErr := wf.Run(context.Background(), record)
	require.Error(t, runErr)
	var perr *domain.PyruseError
	require.ErrorAs(t, runErr, &perr)
	assert.Equal(t, domain.ErrRecordData, perr.Kind)
}
