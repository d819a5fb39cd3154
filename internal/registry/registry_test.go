package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stefal/pyruse-go/internal/domain"
)

func TestNewFilterUnknownName(t *testing.T) {
	t.Parallel()
	r := New()
	_, err := r.NewFilter("nope", domain.NewRecord())
	var perr *domain.PyruseError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, domain.ErrConfig, perr.Kind)
}

func TestNewActionConstructionFailurePropagates(t *testing.T) {
	t.Parallel()
	r := New()
	r.RegisterAction("boom", func(args domain.ModuleArgs) (domain.Action, error) {
		return nil, errors.New("missing required arg")
	})
	_, err := r.NewAction("boom", domain.NewRecord())
	assert.Error(t, err)
}

func TestRegisterAndConstructFilter(t *testing.T) {
	t.Parallel()
	r := New()
	r.RegisterFilter("always-true", func(args domain.ModuleArgs) (domain.Filter, error) {
		return domain.FilterFunc(func(ctx context.Context, rec *domain.Record) bool { return true }), nil
	})
	f, err := r.NewFilter("always-true", domain.NewRecord())
	assert.NoError(t, err)
	assert.True(t, f.Run(context.Background(), domain.NewRecord()))
}

func TestFilterAndActionNamespacesAreSeparate(t *testing.T) {
	t.Parallel()
	r := New()
	r.RegisterFilter("x", func(args domain.ModuleArgs) (domain.Filter, error) {
		return domain.FilterFunc(func(ctx context.Context, rec *domain.Record) bool { return true }), nil
	})
	_, err := r.NewAction("x", domain.NewRecord())
	assert.Error(t, err)
}
