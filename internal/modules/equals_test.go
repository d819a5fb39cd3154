package modules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefal/pyruse-go/internal/domain"
)

func newArgs(kv map[string]domain.Value) *domain.Record {
	r := domain.NewRecord()
	for k, v := range kv {
		r.Set(k, v)
	}
	return r
}

func TestEqualsFilterMatches(t *testing.T) {
	t.Parallel()
	args := newArgs(map[string]domain.Value{
		"field": domain.StringValue("unit"),
		"value": domain.StringValue("sshd"),
	})
	f, err := NewEqualsFilter(args)
	require.NoError(t, err)

	record := newArgs(map[string]domain.Value{"unit": domain.StringValue("sshd")})
	assert.True(t, f.Run(context.Background(), record))
}

func TestEqualsFilterMismatch(t *testing.T) {
	t.Parallel()
	args := newArgs(map[string]domain.Value{
		"field": domain.StringValue("unit"),
		"value": domain.StringValue("sshd"),
	})
	f, err := NewEqualsFilter(args)
	require.NoError(t, err)

	record := newArgs(map[string]domain.Value{"unit": domain.StringValue("cron")})
	assert.False(t, f.Run(context.Background(), record))
}

func TestEqualsFilterMissingFieldIsFalseNotError(t *testing.T) {
	t.Parallel()
	args := newArgs(map[string]domain.Value{
		"field": domain.StringValue("unit"),
		"value": domain.StringValue("sshd"),
	})
	f, err := NewEqualsFilter(args)
	require.NoError(t, err)

	record := domain.NewRecord()
	assert.False(t, f.Run(context.Background(), record))
}

func TestEqualsFilterRequiresFieldAndValue(t *testing.T) {
	t.Parallel()
	_, err := NewEqualsFilter(newArgs(map[string]domain.Value{"value": domain.StringValue("x")}))
	assert.Error(t, err)

	_, err = NewEqualsFilter(newArgs(map[string]domain.Value{"field": domain.StringValue("x")}))
	assert.Error(t, err)
}
