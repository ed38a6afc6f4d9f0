// Package server exposes the operational HTTP endpoints of the watch
// command.
//
// MetricsServer serves on a dedicated address:
//   - /metrics: Prometheus scrape endpoint backed by the OpenTelemetry
//     Prometheus exporter
//   - /healthz: liveness, always ok while the process runs
//   - /readyz: readiness, ok once a scan succeeded and until the process
//     starts shutting down
//   - /healthz/detailed: uptime and the outcome of the last scan
package server
