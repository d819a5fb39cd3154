package modules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stefal/pyruse-go/internal/domain"
)

func TestNoopDoesNothing(t *testing.T) {
	t.Parallel()
	action, err := NewNoopAction(domain.NewRecord())
	require.NoError(t, err)
	require.NoError(t, action.Run(context.Background(), domain.NewRecord()))
}
