package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/teemow/inboxsummary/internal/config"
	"github.com/teemow/inboxsummary/internal/instrumentation"
)

// Options control what is scanned and what happens to a processed message.
type Options struct {
	// Trigger is config.TriggerLabel or config.TriggerStar.
	Trigger string
	// Label is the trigger label name in label mode.
	Label string
	// Recipient receives the summary emails.
	Recipient string

	AttachPDF bool
	MarkRead  bool
	// DryRun summarises without sending mail or clearing the trigger.
	DryRun bool
}

// OptionsFromConfig copies the pipeline settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Trigger:   cfg.Trigger,
		Label:     cfg.Label,
		Recipient: cfg.ResponseEmail,
		AttachPDF: cfg.AttachPDF,
		MarkRead:  cfg.MarkRead,
		DryRun:    cfg.DryRun,
	}
}

// Query returns the mailbox search query for the trigger.
func (o Options) Query() string {
	if o.Trigger == config.TriggerStar {
		return "is:starred"
	}
	return fmt.Sprintf("label:%q", o.Label)
}

// Option configures a Scanner or Processor.
type Option func(*settings)

type settings struct {
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
}

func newSettings(opts []Option) settings {
	s := settings{logger: slog.Default()}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records scan and message metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithAuditLogger logs one audit record per processed message.
func WithAuditLogger(a *instrumentation.AuditLogger) Option {
	return func(s *settings) { s.audit = a }
}
