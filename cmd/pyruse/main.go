// Command pyruse is the daemon entry point: it loads configuration, wires
// the concrete log source, log sink, mailer, counter store, DNAT cache and
// netfilter ban adapters into the module registry, compiles the workflow,
// and runs the entry loop until a signal or a fatal error ends it.
// Grounded on the teacher's cmd/gone/main.go structure (SPEC_FULL.md §6,
// §10): small, testable helper functions called from run(), with distinct
// os.Exit codes per failure class.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/stefal/pyruse-go/internal/config"
	"github.com/stefal/pyruse-go/internal/counter"
	"github.com/stefal/pyruse-go/internal/dnat"
	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/email"
	"github.com/stefal/pyruse-go/internal/ingest"
	"github.com/stefal/pyruse-go/internal/journal"
	"github.com/stefal/pyruse-go/internal/modules"
	"github.com/stefal/pyruse-go/internal/netfilter"
	"github.com/stefal/pyruse-go/internal/pipeline"
	"github.com/stefal/pyruse-go/internal/registry"
)

// Exit codes per SPEC_FULL.md §6.
const (
	exitGeneric         = 1
	exitConfigNotFound  = 2
	exitConfigInvalid   = 3
	exitLogSourceFailed = 4
)

func fatal(code int, msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(code)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		var pe *domain.PyruseError
		if errors.As(err, &pe) && pe.Kind == domain.ErrConfig {
			fatal(exitConfigNotFound, "configuration error", err)
		}
		fatal(exitConfigInvalid, "configuration error", err)
	}
	return cfg
}

// counterAdapter satisfies modules.Counters atop a *counter.Store,
// translating between the two packages' distinct (but shape-identical)
// Entry/Data types (internal/modules declares its own to stay acyclic).
type counterAdapter struct{ store *counter.Store }

func (c counterAdapter) Augment(entry modules.CounterEntry, data modules.CounterData) uint64 {
	return c.store.Augment(counter.Entry{Name: entry.Name, Key: entry.Key}, counter.Data{Count: data.Count, Expiry: data.Expiry})
}

func (c counterAdapter) Reset(entry modules.CounterEntry, graceUntil *time.Time) uint64 {
	return c.store.Reset(counter.Entry{Name: entry.Name, Key: entry.Key}, graceUntil)
}

// counterMetricsAdapter satisfies counter.Metrics atop a *pipeline.Metrics:
// counter.Metrics reports a sweep/grace-block count per call (Inc(name,
// delta)), while pipeline.Metrics exposes that as IncBy.
type counterMetricsAdapter struct{ metrics *pipeline.Metrics }

func (c counterMetricsAdapter) Inc(name string, delta int64) { c.metrics.IncBy(name, delta) }

// dnatAdapter satisfies modules.DnatCache atop a *dnat.Cache.
type dnatAdapter struct{ cache *dnat.Cache }

func (d dnatAdapter) Put(m modules.DnatMapping) {
	d.cache.Put(dnat.Mapping{
		SrcAddr: m.SrcAddr, SrcPort: m.SrcPort,
		InternalAddr: m.InternalAddr, InternalPort: m.InternalPort,
		DestAddr: m.DestAddr, DestPort: m.DestPort,
		KeepUntil: m.KeepUntil,
	})
}

func (d dnatAdapter) GetAll() []modules.DnatMapping {
	raw := d.cache.GetAll()
	out := make([]modules.DnatMapping, len(raw))
	for i, m := range raw {
		out[i] = modules.DnatMapping{
			SrcAddr: m.SrcAddr, SrcPort: m.SrcPort,
			InternalAddr: m.InternalAddr, InternalPort: m.InternalPort,
			DestAddr: m.DestAddr, DestPort: m.DestPort,
			KeepUntil: m.KeepUntil,
		}
	}
	return out
}

func stringArg(m map[string]any, key, def string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
}

func secondsArg(m map[string]any, key string, def time.Duration) time.Duration {
	switch v := m[key].(type) {
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	}
	return def
}

// buildLogSource constructs the journalctl-following LogSource from the
// ambient "logSource" config section: {command?: string}.
func buildLogSource(ambient map[string]any) *journal.Adapter {
	return &journal.Adapter{Command: stringArg(ambient, "command", "")}
}

// buildLogWriter constructs the systemd-cat-based modules.LogPort from the
// same "logSource" section (the reference adapter pairs one command style
// with the other, but each knob is independently overridable):
// {writeCommand?: string, timeout?: int seconds}.
func buildLogWriter(ambient map[string]any) *journal.Writer {
	return &journal.Writer{
		Command: stringArg(ambient, "writeCommand", ""),
		Timeout: secondsArg(ambient, "timeout", 5*time.Second),
	}
}

// buildMailer constructs the sendmail-piping modules.Mailer from the
// ambient "mailer" config section (internal/email.ParseConfig's shape):
// {from, to, sendmail?}.
func buildMailer(ambient map[string]any) (*email.Adapter, error) {
	cfg, err := email.ParseConfig(ambient)
	if err != nil {
		return nil, err
	}
	return &email.Adapter{Config: cfg}, nil
}

// buildBanBackend constructs the configured netfilter.Backend from the
// ambient "banBackend" config section:
// {type?: "ipset"|"nft" (default "ipset"), command?: string, table?: string, timeout?: int seconds}.
func buildBanBackend(ambient map[string]any) (netfilter.Backend, error) {
	kind := stringArg(ambient, "type", "ipset")
	timeout := secondsArg(ambient, "timeout", 5*time.Second)
	switch kind {
	case "ipset":
		return &netfilter.IPSetBackend{Command: stringArg(ambient, "command", ""), Timeout: timeout}, nil
	case "nft":
		table := stringArg(ambient, "table", "")
		if table == "" {
			return nil, domain.NewError(domain.ErrConfig, `banBackend "table" is required when "type" is "nft"`)
		}
		return &netfilter.NFTBackend{Command: stringArg(ambient, "command", ""), Table: table, Timeout: timeout}, nil
	default:
		return nil, domain.NewError(domain.ErrConfig, fmt.Sprintf("banBackend: unknown type %q", kind))
	}
}

// buildBanStorage constructs the ban-list Storage from the ambient
// "banStorage" config section: {path: string}.
func buildBanStorage(ambient map[string]any, clock domain.Clock) (netfilter.Storage, error) {
	path := stringArg(ambient, "path", "")
	if path == "" {
		return nil, domain.NewError(domain.ErrConfig, `banStorage "path" is required`)
	}
	return &netfilter.FileStorage{Path: path, Clock: clock}, nil
}

func buildRegistry(cfg *config.Config, clock domain.Clock, logger *slog.Logger, metrics *pipeline.Metrics) (*registry.Registry, error) {
	counters := counter.New(clock, counterMetricsAdapter{metrics: metrics})
	counters.SweepOnRead = cfg.Ambient.CounterSweepOnRead
	dnatCache := dnat.New(clock)

	mailer, err := buildMailer(cfg.Ambient.Mailer)
	if err != nil {
		return nil, err
	}

	backend, err := buildBanBackend(cfg.Ambient.BanBackend)
	if err != nil {
		return nil, err
	}
	storage, err := buildBanStorage(cfg.Ambient.BanStorage, clock)
	if err != nil {
		return nil, err
	}
	banService := &netfilter.Service{Backend: backend, Storage: storage, Metrics: metrics}

	logWriter := buildLogWriter(cfg.Ambient.LogSource)
	logWriter.Logger = logger

	r := registry.New()
	modules.Register(r, modules.Dependencies{
		Counters:   counterAdapter{store: counters},
		DNAT:       dnatAdapter{cache: dnatCache},
		Netfilter:  banService,
		Logger:     logWriter,
		Mailer:     mailer,
		Clock:      clock,
		Metrics:    metrics,
		DiagLogger: logger,
	})
	return r, nil
}

func run() error {
	logger := slog.Default()

	cfg := loadConfig()
	clock := domain.RealClock{}

	metrics := pipeline.NewMetrics(pipeline.MetricsConfig{Logger: logger})

	r, err := buildRegistry(cfg, clock, logger, metrics)
	if err != nil {
		fatal(exitConfigInvalid, "failed to wire module dependencies", err)
	}

	workflow, err := pipeline.Build(cfg.Chains, r)
	if err != nil {
		fatal(exitConfigInvalid, "failed to build workflow", err)
	}
	workflow.Metrics = metrics

	source := buildLogSource(cfg.Ambient.LogSource)
	source.Logger = logger

	ctx := context.Background()
	if err := source.Open(ctx); err != nil {
		fatal(exitLogSourceFailed, "failed to start log source", err)
	}
	defer source.Close()

	metrics.Start(ctx)
	defer metrics.Stop()

	loop := &ingest.Loop{Source: source, Workflow: workflow, Logger: logger}
	slog.Info("pyruse started", "pid", os.Getpid())
	return loop.Run(ctx)
}

func main() {
	if err := run(); err != nil {
		slog.Error("pyruse exited with error", "err", err)
		os.Exit(exitGeneric)
	}
}
