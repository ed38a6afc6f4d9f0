package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrStatus     = "status"
	attrOperation  = "operation"
	attrService    = "service"
	attrAttachment = "attachment"
	attrDomain     = "sender_domain"
	attrTrigger    = "trigger"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a valid no-op recorder.
type Metrics struct {
	// Scan metrics
	scansTotal     metric.Int64Counter
	scanDuration   metric.Float64Histogram
	threadsSkipped metric.Int64Counter

	// Message pipeline metrics
	messagesProcessed metric.Int64Counter
	messageDuration   metric.Float64Histogram

	// External API metrics
	apiOperationsTotal   metric.Int64Counter
	apiOperationDuration metric.Float64Histogram

	// detailedLabels adds high-cardinality labels such as the sender domain
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error

	m.scansTotal, err = meter.Int64Counter(
		"scans_total",
		metric.WithDescription("Total number of mailbox scans"),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scans_total counter: %w", err)
	}

	m.scanDuration, err = meter.Float64Histogram(
		"scan_duration_seconds",
		metric.WithDescription("Mailbox scan duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 120.0, 300.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan_duration_seconds histogram: %w", err)
	}

	m.threadsSkipped, err = meter.Int64Counter(
		"threads_skipped_total",
		metric.WithDescription("Total number of matching threads skipped because they had no messages"),
		metric.WithUnit("{thread}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create threads_skipped_total counter: %w", err)
	}

	m.messagesProcessed, err = meter.Int64Counter(
		"messages_processed_total",
		metric.WithDescription("Total number of messages run through the summary pipeline"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_processed_total counter: %w", err)
	}

	m.messageDuration, err = meter.Float64Histogram(
		"message_duration_seconds",
		metric.WithDescription("Summary pipeline duration per message in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create message_duration_seconds histogram: %w", err)
	}

	m.apiOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Gmail and Gemini API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.apiOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Gmail and Gemini API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordScan records a completed mailbox scan.
func (m *Metrics) RecordScan(ctx context.Context, trigger, status string, duration time.Duration) {
	if m == nil || m.scansTotal == nil || m.scanDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTrigger, trigger),
		attribute.String(attrStatus, status),
	)
	m.scansTotal.Add(ctx, 1, attrs)
	m.scanDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordThreadSkipped records a matching thread that had no messages.
func (m *Metrics) RecordThreadSkipped(ctx context.Context) {
	if m == nil || m.threadsSkipped == nil {
		return
	}
	m.threadsSkipped.Add(ctx, 1)
}

// RecordMessage records one message run through the pipeline.
//
// Parameters:
//   - status: "success", "error" or "skipped"
//   - withAttachment: whether a PDF reference was sent to the model
//   - senderDomain: only recorded when detailed labels are enabled
//   - duration: time from fetch to notification
func (m *Metrics) RecordMessage(ctx context.Context, status string, withAttachment bool, senderDomain string, duration time.Duration) {
	if m == nil || m.messagesProcessed == nil || m.messageDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
		attribute.Bool(attrAttachment, withAttachment),
	}
	if m.detailedLabels && senderDomain != "" {
		attrs = append(attrs, attribute.String(attrDomain, senderDomain))
	}

	m.messagesProcessed.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.messageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordGoogleAPIOperation records a Gmail or Gemini API call.
//
// Parameters:
//   - service: ServiceGmail or ServiceGemini
//   - operation: Operation type (list, get, modify, send, generate, upload)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.apiOperationsTotal == nil || m.apiOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.apiOperationsTotal.Add(ctx, 1, attrs)
	m.apiOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// StatusFor maps an error to a status label value.
func StatusFor(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
