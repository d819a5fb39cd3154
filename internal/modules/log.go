package modules

import (
	"context"
	"log/slog"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/pipeline"
)

// LogAction implements the Log action (SPEC_FULL.md §4.5): formats a
// template against the record and writes it to the log port at a
// configured severity.
type LogAction struct {
	logger   LogPort
	level    Severity
	template *domain.Template
	metrics  Metrics
}

// NewLogAction builds a constructor bound to a LogPort. metrics and
// diagLogger may be nil. diagLogger receives the WARNING logged on an
// unknown "level" name; it is distinct from logger, which is the journal
// LogPort this action writes its rendered messages to.
func NewLogAction(logger LogPort, metrics Metrics, diagLogger *slog.Logger) func(domain.ModuleArgs) (domain.Action, error) {
	if diagLogger == nil {
		diagLogger = slog.Default()
	}
	return func(args domain.ModuleArgs) (domain.Action, error) {
		level := Info
		if l := optionalString(args, "level"); l != "" {
			parsed, ok := ParseSeverity(l)
			if !ok {
				diagLogger.Warn("log action: unknown level name, falling back to INFO", "level", l)
			} else {
				level = parsed
			}
		}
		message, ok := args.GetString("message")
		if !ok || message == "" {
			return nil, domain.NewError(domain.ErrConfig, "log: needs a message template in \"message\"")
		}
		return &LogAction{logger: logger, level: level, template: domain.CompileTemplate(message), metrics: metrics}, nil
	}
}

func (a *LogAction) Run(ctx context.Context, record *domain.Record) error {
	a.logger.Write(a.level, a.template.Format(record))
	if a.metrics != nil {
		a.metrics.Inc(pipeline.MetricLogSends)
	}
	return nil
}
