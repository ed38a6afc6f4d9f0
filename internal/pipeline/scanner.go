package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/inboxsummary/internal/config"
	"github.com/teemow/inboxsummary/internal/gmail"
	"github.com/teemow/inboxsummary/internal/instrumentation"
	"github.com/teemow/inboxsummary/internal/logging"
)

// ScanResult counts what a scan did.
type ScanResult struct {
	RunID string
	// Threads is the number of matching threads.
	Threads int
	// Messages is the number of messages summarised.
	Messages int
	// Skipped is the number of matching threads without messages.
	Skipped int
}

// LogValue implements slog.LogValuer.
func (r ScanResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("threads", r.Threads),
		slog.Int("messages", r.Messages),
		slog.Int("skipped", r.Skipped),
	)
}

// Scanner finds triggered messages and processes them.
type Scanner struct {
	mailbox   Mailbox
	processor *Processor
	opts      Options

	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewScanner creates a Scanner and its Processor.
func NewScanner(mailbox Mailbox, summarizer Summarizer, sender Sender, opts Options, options ...Option) *Scanner {
	s := newSettings(options)
	return &Scanner{
		mailbox:   mailbox,
		processor: NewProcessor(mailbox, summarizer, sender, opts, options...),
		opts:      opts,
		logger:    s.logger,
		metrics:   s.metrics,
	}
}

// Scan processes every qualifying message of every matching thread, one at
// a time and in the order the mailbox returns them.
//
// In label mode the label is removed from a thread once all of its messages
// were processed. In star mode only starred messages qualify and each is
// unstarred after processing. In dry run the trigger is left untouched.
//
// The first processing error stops the scan and is returned along with the
// counts so far.
func (s *Scanner) Scan(ctx context.Context) (res ScanResult, err error) {
	res.RunID = uuid.NewString()
	start := time.Now()

	ctx, span := instrumentation.StartSpan(ctx, "scan",
		attribute.String(instrumentation.SpanAttrRunID, res.RunID),
		attribute.String(instrumentation.SpanAttrTrigger, s.opts.Trigger),
	)
	logger := logging.WithRun(s.logger, res.RunID)

	defer func() {
		span.SetAttributes(
			attribute.Int("summary.threads", res.Threads),
			attribute.Int("summary.messages", res.Messages),
		)
		instrumentation.EndSpan(span, err)
		s.metrics.RecordScan(ctx, s.opts.Trigger, instrumentation.StatusFor(err), time.Since(start))

		if err != nil {
			logger.Error("scan failed", slog.Any("result", res), logging.Err(err))
			return
		}
		logger.Info("scan finished", slog.Any("result", res), slog.Duration(logging.KeyDuration, time.Since(start)))
	}()

	var labelID string
	if s.opts.Trigger != config.TriggerStar {
		labelID, err = s.mailbox.LabelID(ctx, s.opts.Label)
		if errors.Is(err, gmail.ErrLabelNotFound) {
			// Nothing can carry a label that does not exist.
			logger.Warn("trigger label does not exist", slog.String("label", s.opts.Label))
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("failed to resolve label %q: %w", s.opts.Label, err)
		}
	}

	query := s.opts.Query()
	logger.Debug("scanning mailbox", logging.Trigger(s.opts.Trigger), slog.String("query", query))

	err = s.mailbox.ForeachThread(ctx, query, func(threadID string) error {
		res.Threads++
		n, err := s.scanThread(ctx, logger, threadID, labelID)
		res.Messages += n
		if errors.Is(err, errEmptyThread) {
			res.Skipped++
			return nil
		}
		return err
	})
	if err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}

var errEmptyThread = errors.New("thread has no messages")

// scanThread processes one thread and returns the number of messages
// summarised.
func (s *Scanner) scanThread(ctx context.Context, logger *slog.Logger, threadID, labelID string) (int, error) {
	thread, err := s.mailbox.GetThread(ctx, threadID)
	if err != nil {
		return 0, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}
	if len(thread.Messages) == 0 {
		logger.Info("skipping thread without messages", logging.ThreadID(threadID))
		s.metrics.RecordThreadSkipped(ctx)
		return 0, errEmptyThread
	}

	star := s.opts.Trigger == config.TriggerStar
	n := 0
	for _, msg := range thread.Messages {
		if star && !msg.HasLabel(gmail.LabelStarred) {
			continue
		}
		if _, err := s.processor.Process(ctx, msg); err != nil {
			return n, fmt.Errorf("message %s: %w", msg.ID, err)
		}
		n++

		if s.opts.DryRun {
			continue
		}
		var remove []string
		if star {
			remove = append(remove, gmail.LabelStarred)
		}
		if s.opts.MarkRead && msg.HasLabel(gmail.LabelUnread) {
			remove = append(remove, gmail.LabelUnread)
		}
		if len(remove) > 0 {
			if err := s.mailbox.ModifyMessage(ctx, msg.ID, nil, remove); err != nil {
				return n, fmt.Errorf("failed to clear message %s: %w", msg.ID, err)
			}
		}
	}

	if !star && !s.opts.DryRun {
		if err := s.mailbox.RemoveThreadLabel(ctx, thread.ID, labelID); err != nil {
			return n, fmt.Errorf("failed to remove label from thread %s: %w", thread.ID, err)
		}
	}
	return n, nil
}

// Watch scans immediately and then every interval until ctx is done. Scan
// errors are logged and passed to onScan; they do not stop watching.
func (s *Scanner) Watch(ctx context.Context, interval time.Duration, onScan func(ScanResult, error)) error {
	if interval <= 0 {
		return fmt.Errorf("invalid poll interval %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := s.Scan(ctx)
		if onScan != nil {
			onScan(res, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
