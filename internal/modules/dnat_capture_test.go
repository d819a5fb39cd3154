package modules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefal/pyruse-go/internal/domain"
)

// fakeDnatCache is a minimal in-memory DnatCache double.
type fakeDnatCache struct{ puts []DnatMapping }

func (f *fakeDnatCache) Put(m DnatMapping) { f.puts = append(f.puts, m) }
func (f *fakeDnatCache) GetAll() []DnatMapping {
	out := make([]DnatMapping, len(f.puts))
	copy(out, f.puts)
	return out
}

func TestDnatCaptureRequiresSaddr(t *testing.T) {
	t.Parallel()
	cache := &fakeDnatCache{}
	ctor := NewDnatCaptureAction(cache, &fakeClock{})
	_, err := ctor(newArgs(map[string]domain.Value{"addrValue": domain.StringValue("1.2.3.4")}))
	assert.Error(t, err)
}

func TestDnatCaptureRequiresAddrOrAddrValue(t *testing.T) {
	t.Parallel()
	cache := &fakeDnatCache{}
	ctor := NewDnatCaptureAction(cache, &fakeClock{})
	_, err := ctor(newArgs(map[string]domain.Value{"saddr": domain.StringValue("src_ip")}))
	assert.Error(t, err)
}

func TestDnatCaptureWithAddrValueOnlyIsValid(t *testing.T) {
	t.Parallel()
	cache := &fakeDnatCache{}
	ctor := NewDnatCaptureAction(cache, &fakeClock{})
	_, err := ctor(newArgs(map[string]domain.Value{
		"saddr":     domain.StringValue("src_ip"),
		"addrValue": domain.StringValue("1.2.3.4"),
	}))
	assert.NoError(t, err)
}

func TestDnatCaptureStoresMappingWithDefaultRetention(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := &fakeDnatCache{}
	ctor := NewDnatCaptureAction(cache, &fakeClock{now: now})
	action, err := ctor(newArgs(map[string]domain.Value{
		"saddr":     domain.StringValue("src_ip"),
		"addrValue": domain.StringValue("10.0.0.1"),
		"daddr":     domain.StringValue("dst_ip"),
		"dport":     domain.StringValue("dst_port"),
	}))
	require.NoError(t, err)

	record := newArgs(map[string]domain.Value{
		"src_ip":   domain.StringValue("1.2.3.4"),
		"dst_ip":   domain.StringValue("5.6.7.8"),
		"dst_port": domain.IntValue(443),
	})
	require.NoError(t, action.Run(context.Background(), record))

	require.Len(t, cache.puts, 1)
	m := cache.puts[0]
	assert.Equal(t, "1.2.3.4", m.SrcAddr)
	assert.Equal(t, "10.0.0.1", m.InternalAddr)
	assert.Equal(t, "5.6.7.8", m.DestAddr)
	assert.Equal(t, "443", m.DestPort)
	assert.Equal(t, now.Add(dnatDefaultRetention), m.KeepUntil)
}

func TestDnatCaptureSkipsWhenSaddrMissing(t *testing.T) {
	t.Parallel()
	cache := &fakeDnatCache{}
	ctor := NewDnatCaptureAction(cache, &fakeClock{})
	action, err := ctor(newArgs(map[string]domain.Value{
		"saddr":     domain.StringValue("src_ip"),
		"addrValue": domain.StringValue("10.0.0.1"),
	}))
	require.NoError(t, err)

	record := domain.NewRecord()
	require.NoError(t, action.Run(context.Background(), record))
	assert.Empty(t, cache.puts)
}
