package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/inboxsummary/internal/logging"
)

// SummaryDelivery captures one processed message for the audit log: which
// message was summarised and where the summary went.
//
// Sender and Recipient are PII. LogAttrs anonymizes them; LogAuditAttrs does not.
type SummaryDelivery struct {
	MessageID string
	ThreadID  string
	Sender    string
	Recipient string

	WithAttachment bool
	DryRun         bool

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewSummaryDelivery starts timing a delivery for the given message.
func NewSummaryDelivery(messageID, threadID string) *SummaryDelivery {
	return &SummaryDelivery{
		MessageID: messageID,
		ThreadID:  threadID,
		StartTime: time.Now(),
	}
}

// WithAddresses sets the sender of the summarised message and the recipient
// of the summary.
func (d *SummaryDelivery) WithAddresses(sender, recipient string) *SummaryDelivery {
	d.Sender = sender
	d.Recipient = recipient
	return d
}

// WithSpanContext copies the trace context from the current span.
func (d *SummaryDelivery) WithSpanContext(ctx context.Context) *SummaryDelivery {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		d.TraceID = span.SpanContext().TraceID().String()
		d.SpanID = span.SpanContext().SpanID().String()
	}
	return d
}

// Complete marks the delivery as finished and calculates its duration.
func (d *SummaryDelivery) Complete(err error) *SummaryDelivery {
	d.Duration = time.Since(d.StartTime)
	d.Success = err == nil
	if err != nil {
		d.Error = err.Error()
	}
	return d
}

// Status returns "success" or "error".
func (d *SummaryDelivery) Status() string {
	if d.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns attributes with anonymized addresses.
func (d *SummaryDelivery) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("message_id", d.MessageID),
		slog.String("thread_id", d.ThreadID),
		slog.String("sender_domain", ExtractUserDomain(d.Sender)),
		logging.UserHash(d.Recipient),
		slog.Bool("attachment", d.WithAttachment),
		slog.Duration("duration", d.Duration),
		slog.Bool("success", d.Success),
	}
	return d.appendOptional(attrs)
}

// LogAuditAttrs returns attributes including full addresses.
func (d *SummaryDelivery) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("message_id", d.MessageID),
		slog.String("thread_id", d.ThreadID),
		slog.String("sender", d.Sender),
		slog.String("recipient", d.Recipient),
		slog.Bool("attachment", d.WithAttachment),
		slog.Duration("duration", d.Duration),
		slog.Bool("success", d.Success),
	}
	return d.appendOptional(attrs)
}

func (d *SummaryDelivery) appendOptional(attrs []slog.Attr) []slog.Attr {
	if d.DryRun {
		attrs = append(attrs, slog.Bool("dry_run", true))
	}
	if d.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", d.TraceID))
	}
	if d.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", d.SpanID))
	}
	if d.Error != "" {
		attrs = append(attrs, slog.String("error", d.Error))
	}
	return attrs
}

// AuditLogger writes one structured record per summary delivery.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an AuditLogger. A nil logger uses slog.Default().
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogDelivery logs d. It is safe to call on a nil AuditLogger.
func (al *AuditLogger) LogDelivery(d *SummaryDelivery) {
	if al == nil || !al.enabled {
		return
	}

	var attrs []slog.Attr
	if al.includePII {
		attrs = d.LogAuditAttrs()
	} else {
		attrs = d.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if d.Success {
		al.logger.Info("summary_delivered", args...)
	} else {
		al.logger.Warn("summary_failed", args...)
	}
}
