// Package otel bridges goGate metric snapshots into OpenTelemetry observable
// instruments registered against an injected [metric.Meter].
//
// Counters become Int64ObservableCounters; histogram buckets are exposed as
// cumulative Int64ObservableGauges because snapshots carry bucket counts,
// not raw observations.
//
// # What this package must NOT do
//
//   - Install a global meter provider.
//   - Mutate client state.
package otel
