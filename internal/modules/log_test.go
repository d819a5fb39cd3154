package modules

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/pipeline"
)

type fakeLogPort struct {
	level   Severity
	message string
}

func (f *fakeLogPort) Write(level Severity, message string) {
	f.level = level
	f.message = message
}

type captureMetrics struct{ counts map[string]int }

func (m *captureMetrics) Inc(name string) {
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[name]++
}

func TestLogActionFormatsTemplate(t *testing.T) {
	t.Parallel()
	logger := &fakeLogPort{}
	metrics := &captureMetrics{}
	ctor := NewLogAction(logger, metrics, nil)
	action, err := ctor(newArgs(map[string]domain.Value{
		"level":   domain.StringValue("WARNING"),
		"message": domain.StringValue("login failed from {srcIP}"),
	}))
	require.NoError(t, err)

	record := newArgs(map[string]domain.Value{"srcIP": domain.StringValue("1.2.3.4")})
	require.NoError(t, action.Run(context.Background(), record))

	assert.Equal(t, Warning, logger.level)
	assert.Equal(t, "login failed from 1.2.3.4", logger.message)
	assert.Equal(t, 1, metrics.counts[pipeline.MetricLogSends])
}

func TestLogActionDefaultsToInfo(t *testing.T) {
	t.Parallel()
	logger := &fakeLogPort{}
	ctor := NewLogAction(logger, nil, nil)
	action, err := ctor(newArgs(map[string]domain.Value{"message": domain.StringValue("hello")}))
	require.NoError(t, err)

	require.NoError(t, action.Run(context.Background(), domain.NewRecord()))
	assert.Equal(t, Info, logger.level)
}

func TestLogActionUnknownLevelFallsBackToInfoAndWarns(t *testing.T) {
	t.Parallel()
	logger := &fakeLogPort{}
	var buf bytes.Buffer
	diag := slog.New(slog.NewTextHandler(&buf, nil))
	ctor := NewLogAction(logger, nil, diag)
	action, err := ctor(newArgs(map[string]domain.Value{
		"level":   domain.StringValue("BOGUS"),
		"message": domain.StringValue("hello"),
	}))
	require.NoError(t, err)

	require.NoError(t, action.Run(context.Background(), domain.NewRecord()))
	assert.Equal(t, Info, logger.level)
	assert.Contains(t, buf.String(), "unknown level")
	assert.Contains(t, buf.String(), "BOGUS")
}

func TestLogActionRequiresMessage(t *testing.T) {
	t.Parallel()
	ctor := NewLogAction(&fakeLogPort{}, nil, nil)
	_, err := ctor(domain.NewRecord())
	assert.Error(t, err)
}
