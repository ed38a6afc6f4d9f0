// Package instrumentation provides OpenTelemetry metrics and tracing for
// inboxsummary.
//
// # Metrics
//
// Scan metrics:
//   - scans_total: Counter of mailbox scans by trigger and status
//   - scan_duration_seconds: Histogram of scan durations
//   - threads_skipped_total: Counter of matching threads with no messages
//
// Message metrics:
//   - messages_processed_total: Counter of messages by status and attachment
//   - message_duration_seconds: Histogram of per-message pipeline durations
//
// Google API metrics:
//   - google_api_operations_total: Counter of Gmail and Gemini calls by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of call durations
//
// # Tracing
//
// Spans are created for each scan (scan), each message (message.process) and
// each Gmail or Gemini call (google.<service>.<operation>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces and metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - METRICS_DETAILED_LABELS: Add sender_domain to message metrics
//   - AUDIT_LOGGING_ENABLED / AUDIT_LOGGING_INCLUDE_PII: per-summary audit log
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	start := time.Now()
//	err = doScan(ctx)
//	provider.Metrics().RecordScan(ctx, "label", instrumentation.StatusFor(err), time.Since(start))
//
// All Metrics methods are nil-safe, so callers may pass a nil *Metrics when
// instrumentation is not wanted.
package instrumentation
