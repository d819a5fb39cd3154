package modules

import (
	"context"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/pipeline"
)

const defaultEmailSubject = "Pyruse Notification"

// EmailAction implements the Email action (SPEC_FULL.md §4.5): formats a
// template against the record and sends it through the configured mailer.
type EmailAction struct {
	mailer   Mailer
	subject  string
	template *domain.Template
	metrics  Metrics
}

// NewEmailAction builds a constructor bound to a Mailer. metrics may be nil.
func NewEmailAction(mailer Mailer, metrics Metrics) func(domain.ModuleArgs) (domain.Action, error) {
	return func(args domain.ModuleArgs) (domain.Action, error) {
		subject := optionalString(args, "subject")
		if subject == "" {
			subject = defaultEmailSubject
		}
		message, ok := args.GetString("message")
		if !ok || message == "" {
			return nil, domain.NewError(domain.ErrConfig, "email: needs a message template in \"message\"")
		}
		return &EmailAction{mailer: mailer, subject: subject, template: domain.CompileTemplate(message), metrics: metrics}, nil
	}
}

func (a *EmailAction) Run(ctx context.Context, record *domain.Record) error {
	if err := a.mailer.Send(ctx, EmailMessage{Subject: a.subject, Text: a.template.Format(record)}); err != nil {
		return err
	}
	if a.metrics != nil {
		a.metrics.Inc(pipeline.MetricEmailSends)
	}
	return nil
}
