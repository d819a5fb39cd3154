package netfilter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefal/pyruse-go/internal/pipeline"
)

type fakeBackendCall struct {
	op       string
	set, ip  string
	banUntil *time.Time
}

type fakeBackend struct {
	calls []fakeBackendCall
}

func (b *fakeBackend) SetBan(ctx context.Context, set, ip string, banUntil *time.Time) error {
	b.calls = append(b.calls, fakeBackendCall{op: "set", set: set, ip: ip, banUntil: banUntil})
	return nil
}

func (b *fakeBackend) CancelBan(ctx context.Context, set, ip string) error {
	b.calls = append(b.calls, fakeBackendCall{op: "cancel", set: set, ip: ip})
	return nil
}

// TestBanReconciliation implements the end-to-end scenario from
// SPEC_FULL.md §8 #6.
func TestBanReconciliation(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	storage := &FileStorage{Path: filepath.Join(dir, "bans.json"), Clock: &fakeClock{now: now}}

	past := now.Add(-time.Minute)
	_, err := storage.StoreAndRemoveObsoletes("S", "A", &past)
	require.NoError(t, err)

	backend := &fakeBackend{}
	svc := &Service{Backend: backend, Storage: storage}

	until := now.Add(60 * time.Second)
	require.NoError(t, svc.Ban(context.Background(), "S", "B", &until))

	records, err := storage.read()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "B", records[0].IP)

	require.Len(t, backend.calls, 1)
	assert.Equal(t, "set", backend.calls[0].op)

	// Second invocation for the same (set, ip) should cancel first, then set.
	backend.calls = nil
	require.NoError(t, svc.Ban(context.Background(), "S", "B", &until))
	require.Len(t, backend.calls, 2)
	assert.Equal(t, "cancel", backend.calls[0].op)
	assert.Equal(t, "set", backend.calls[1].op)
}

func TestIsIPv6(t *testing.T) {
	t.Parallel()
	assert.True(t, IsIPv6("::1"))
	assert.False(t, IsIPv6("1.2.3.4"))
}

type captureMetrics struct{ counts map[string]int }

func (m *captureMetrics) Inc(name string) {
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[name]++
}

func TestBanReportsInstallAndCancelMetrics(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	storage := &FileStorage{Path: filepath.Join(dir, "bans.json"), Clock: &fakeClock{now: now}}
	backend := &fakeBackend{}
	metrics := &captureMetrics{}
	svc := &Service{Backend: backend, Storage: storage, Metrics: metrics}

	until := now.Add(60 * time.Second)
	require.NoError(t, svc.Ban(context.Background(), "S", "B", &until))
	assert.Equal(t, 1, metrics.counts[pipeline.MetricBanInstalls])
	assert.Equal(t, 0, metrics.counts[pipeline.MetricBanCancels])

	require.NoError(t, svc.Ban(context.Background(), "S", "B", &until))
	assert.Equal(t, 2, metrics.counts[pipeline.MetricBanInstalls])
	assert.Equal(t, 1, metrics.counts[pipeline.MetricBanCancels])
}
