// Package prometheus provides Prometheus collectors for goGate metrics.
//
// [NewPrometheusExporter] accepts a [goGate.Client] and exposes an [http.Handler]
// that renders all goGate counters and histograms in Prometheus text exposition format.
// Counter names are prefixed gogate_*_total; the histograms are
// gogate_request_latency_seconds and gogate_refresh_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate client state.
package prometheus
