package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/inboxsummary/internal/formatter"
	"github.com/teemow/inboxsummary/internal/gemini"
	"github.com/teemow/inboxsummary/internal/instrumentation"
	"github.com/teemow/inboxsummary/internal/logging"
	"github.com/teemow/inboxsummary/internal/mail"
)

// Result describes one processed message.
type Result struct {
	// Summary is the raw model answer.
	Summary string
	// HTML is the complete notification body.
	HTML string
	// WithAttachment is set when a PDF reference was sent to the model.
	WithAttachment bool
	// SentID is the ID of the notification email. It is empty in dry run.
	SentID string
}

// Processor runs a single message through the summary pipeline.
type Processor struct {
	mailbox    Mailbox
	summarizer Summarizer
	sender     Sender
	opts       Options
	format     func(string) string

	logger  *slog.Logger
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
}

// NewProcessor creates a Processor.
func NewProcessor(mailbox Mailbox, summarizer Summarizer, sender Sender, opts Options, options ...Option) *Processor {
	s := newSettings(options)
	return &Processor{
		mailbox:    mailbox,
		summarizer: summarizer,
		sender:     sender,
		opts:       opts,
		format:     formatter.Format,
		logger:     s.logger,
		metrics:    s.metrics,
		audit:      s.audit,
	}
}

// Process summarises msg and mails the summary to the configured recipient.
func (p *Processor) Process(ctx context.Context, msg *mail.Message) (res Result, err error) {
	start := time.Now()
	ctx, span := instrumentation.StartSpan(ctx, "message.process",
		attribute.String(instrumentation.SpanAttrThreadID, msg.ThreadID),
		attribute.String(instrumentation.SpanAttrMessageID, msg.ID),
	)
	logger := logging.WithMessage(p.logger, msg.ThreadID, msg.ID)

	delivery := instrumentation.NewSummaryDelivery(msg.ID, msg.ThreadID).
		WithAddresses(msg.From, p.opts.Recipient).
		WithSpanContext(ctx)
	delivery.DryRun = p.opts.DryRun

	defer func() {
		span.SetAttributes(attribute.Bool(instrumentation.SpanAttrAttachment, res.WithAttachment))
		instrumentation.EndSpan(span, err)

		delivery.WithAttachment = res.WithAttachment
		p.audit.LogDelivery(delivery.Complete(err))
		p.metrics.RecordMessage(ctx, instrumentation.StatusFor(err), res.WithAttachment,
			instrumentation.ExtractUserDomain(msg.From), time.Since(start))
	}()

	pdf := mail.FirstPDF(msg.Attachments)
	var file *gemini.FileReference
	if pdf != nil {
		if err := p.mailbox.LoadAttachment(ctx, pdf); err != nil {
			return res, fmt.Errorf("failed to load attachment %q: %w", pdf.Filename, err)
		}
		file, err = p.upload(ctx, logger, pdf)
		if err != nil {
			return res, err
		}
	}
	res.WithAttachment = file != nil

	res.Summary, err = p.summarizer.Summarize(ctx, gemini.SummaryRequest{
		From:    msg.From,
		Subject: msg.Subject,
		Body:    msg.PlainBody,
		File:    file,
	})
	if err != nil {
		return res, fmt.Errorf("failed to summarise message: %w", err)
	}

	var attach *mail.Attachment
	if p.opts.AttachPDF {
		attach = pdf
	}
	out := ComposeNotification(msg, p.format(res.Summary), p.opts.Recipient, attach)
	res.HTML = out.HTMLBody

	if p.opts.DryRun {
		logger.Info("dry run, summary not sent",
			logging.UserHash(p.opts.Recipient),
			slog.Int("summary_bytes", len(res.Summary)))
		logger.Debug("dry run summary", slog.String("summary", res.Summary))
		return res, nil
	}

	res.SentID, err = p.sender.Send(ctx, out)
	if err != nil {
		return res, fmt.Errorf("failed to send summary: %w", err)
	}
	logger.Info("summary sent", logging.UserHash(p.opts.Recipient), slog.String("sent_id", res.SentID))
	return res, nil
}

// upload sends the PDF to the model's file store. A missing upload session
// is not fatal: the summary is then requested without the file.
func (p *Processor) upload(ctx context.Context, logger *slog.Logger, pdf *mail.Attachment) (*gemini.FileReference, error) {
	ref, err := p.summarizer.UploadFile(ctx, pdf.Filename, mail.PDFMimeType, pdf.Data)
	if errors.Is(err, gemini.ErrNoUploadSession) {
		logger.Warn("attachment upload unavailable, summarising without it",
			slog.String("filename", pdf.Filename), logging.Err(err))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upload attachment %q: %w", pdf.Filename, err)
	}
	if ref.IsZero() {
		return nil, nil
	}
	return &ref, nil
}
