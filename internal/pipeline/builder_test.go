package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/registry"
)

func ptr(s string) *string { return &s }

func testRegistry() *registry.Registry {
	r := registry.New()
	r.RegisterFilter("fakeFilter", func(args domain.ModuleArgs) (domain.Filter, error) {
		return domain.FilterFunc(func(ctx context.Context, rec *domain.Record) bool {
			rec.Set("fakeFilter", domain.IntValue(1))
			v, ok := rec.Get("decision")
			if !ok {
				return true
			}
			b, _ := v.AsBool()
			return b
		}), nil
	})
	r.RegisterAction("fakeAction", func(args domain.ModuleArgs) (domain.Action, error) {
		return domain.ActionFunc(func(ctx context.Context, rec *domain.Record) error {
			rec.Set("fakeAction", domain.IntValue(1))
			return nil
		}), nil
	})
	r.RegisterAction("boom", func(args domain.ModuleArgs) (domain.Action, error) {
		return domain.ActionFunc(func(ctx context.Context, rec *domain.Record) error {
			return domain.NewError(domain.ErrRecordData, "boom")
		}), nil
	})
	return r
}

func TestBuildEmptyConfigurationIsError(t *testing.T) {
	t.Parallel()
	_, err := Build(nil, testRegistry())
	assert.Error(t, err)
}

func TestBuildSingleModuleChain(t *testing.T) {
	t.Parallel()
	wf, err := Build([]Chain{
		{Name: "chain1", Steps: []Step{{Action: "fakeAction", Args: domain.NewRecord()}}},
	}, testRegistry())
	require.NoError(t, err)
	assert.Equal(t, 1, wf.Len())

	record := domain.NewRecord()
	require.NoError(t, wf.Run(context.Background(), record))
	_, ok := record.Get("fakeAction")
	assert.True(t, ok)
}

func TestExplicitChainToChainLinkWorks(t *testing.T) {
	t.Parallel()
	wf, err := Build([]Chain{
		{Name: "chain1", Steps: []Step{{Filter: "fakeFilter", Args: domain.NewRecord(), Else: ptr("chain2")}}},
		{Name: "chain2", Steps: []Step{{Action: "fakeAction", Args: domain.NewRecord()}}},
	}, testRegistry())
	require.NoError(t, err)
	assert.Equal(t, 2, wf.Len())

	record := newArgsRecord(map[string]domain.Value{"decision": domain.BoolValue(false)})
	require.NoError(t, wf.Run(context.Background(), record))
	_, ok := record.Get("fakeAction")
	assert.True(t, ok, "else-edge should have led to chain2's action")
}

func TestElseFallthroughAbsorbedByNextChain(t *testing.T) {
	t.Parallel()
	wf, err := Build([]Chain{
		{Name: "chain1", Steps: []Step{{Filter: "fakeFilter", Args: domain.NewRecord()}}},
		{Name: "chain2", Steps: []Step{{Action: "fakeAction", Args: domain.NewRecord()}}},
	}, testRegistry())
	require.NoError(t, err)

	record := newArgsRecord(map[string]domain.Value{"decision": domain.BoolValue(false)})
	require.NoError(t, wf.Run(context.Background(), record))
	_, ok := record.Get("fakeAction")
	assert.True(t, ok, "unset else should fall through to the next declared chain")
}

func TestElseFallthroughNoNextChainIsTerminal(t *testing.T) {
	t.Parallel()
	wf, err := Build([]Chain{
		{Name: "chain1", Steps: []Step{{Filter: "fakeFilter", Args: domain.NewRecord()}}},
	}, testRegistry())
	require.NoError(t, err)

	record := newArgsRecord(map[string]domain.Value{"decision": domain.BoolValue(false)})
	require.NoError(t, wf.Run(context.Background(), record))
	_, ok := record.Get("fakeAction")
	assert.False(t, ok, "with no next chain the fall-through else-edge stays terminal")
}

func TestThenDefaultTerminal(t *testing.T) {
	t.Parallel()
	wf, err := Build([]Chain{
		{Name: "chain1", Steps: []Step{{Filter: "fakeFilter", Args: domain.NewRecord()}}},
	}, testRegistry())
	require.NoError(t, err)

	record := newArgsRecord(map[string]domain.Value{"decision": domain.BoolValue(true)})
	require.NoError(t, wf.Run(context.Background(), record))
	_, ok := record.Get("fakeAction")
	assert.False(t, ok, "unset then with no next step in the chain stays terminal")
}

func TestImplicitWithinChainLinkWorks(t *testing.T) {
	t.Parallel()
	wf, err := Build([]Chain{
		{Name: "chain1", Steps: []Step{
			{Filter: "fakeFilter", Args: domain.NewRecord()},
			{Action: "fakeAction", Args: domain.NewRecord()},
		}},
	}, testRegistry())
	require.NoError(t, err)
	assert.Equal(t, 2, wf.Len())

	record := newArgsRecord(map[string]domain.Value{"decision": domain.BoolValue(true)})
	require.NoError(t, wf.Run(context.Background(), record))
	_, ok := record.Get("fakeAction")
	assert.True(t, ok, "true filter result should implicitly continue to the next step")
}

func TestUnknownChainReferenceIsIncompleteConfigError(t *testing.T) {
	t.Parallel()
	_, err := Build([]Chain{
		{Name: "chain1", Steps: []Step{{Filter: "fakeFilter", Args: domain.NewRecord(), Else: ptr("nope")}}},
	}, testRegistry())
	require.Error(t, err)
	var perr *domain.PyruseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, domain.ErrConfigValue, perr.Kind)
}

func TestConfigurationLoopIsDetected(t *testing.T) {
	t.Parallel()
	_, err := Build([]Chain{
		{Name: "chain1", Steps: []Step{{Filter: "fakeFilter", Args: domain.NewRecord(), Then: ptr("chain2")}}},
		{Name: "chain2", Steps: []Step{{Filter: "fakeFilter", Args: domain.NewRecord(), Then: ptr("chain1")}}},
	}, testRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration loop")
}

func TestUnknownModuleNameFailsBuild(t *testing.T) {
	t.Parallel()
	_, err := Build([]Chain{
		{Name: "chain1", Steps: []Step{{Action: "nope", Args: domain.NewRecord()}}},
	}, testRegistry())
	assert.Error(t, err)
}

func newArgsRecord(kv map[string]domain.Value) *domain.Record {
	r := domain.NewRecord()
	for k, v := range kv {
		r.Set(k, v)
	}
	return r
}
