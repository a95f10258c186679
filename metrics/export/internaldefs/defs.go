package internaldefs

import (
	goGate "github.com/MrEthical07/goGate"
)

// CounterDef defines a public type used by goGate APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goGate APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the gateway client.
var CounterDefs = []CounterDef{
	{ID: goGate.MetricRequests, Name: "gogate_requests_total", Help: "Gateway requests issued."},
	{ID: goGate.MetricRequestFailures, Name: "gogate_request_failures_total", Help: "Gateway requests that ended in an error."},
	{ID: goGate.MetricAuthChallenges, Name: "gogate_auth_challenges_total", Help: "401 responses observed."},
	{ID: goGate.MetricRefreshSuccess, Name: "gogate_refresh_success_total", Help: "Refresh episodes that produced a token."},
	{ID: goGate.MetricRefreshFailure, Name: "gogate_refresh_failure_total", Help: "Refresh episodes that failed."},
	{ID: goGate.MetricRefreshCoalesced, Name: "gogate_refresh_coalesced_total", Help: "Callers that joined an in-flight refresh episode."},
	{ID: goGate.MetricProactiveRefresh, Name: "gogate_proactive_refresh_total", Help: "Refreshes triggered by token expiry skew before a request."},
	{ID: goGate.MetricRetrySuccess, Name: "gogate_retry_success_total", Help: "Requests retried after a recovered 401."},
	{ID: goGate.MetricSessionExpired, Name: "gogate_session_expired_total", Help: "Failed refresh episodes that ended the session."},
	{ID: goGate.MetricForbidden, Name: "gogate_forbidden_total", Help: "403 responses surfaced to callers."},
	{ID: goGate.MetricRateLimited, Name: "gogate_rate_limited_total", Help: "429 responses surfaced to callers."},
	{ID: goGate.MetricGatewayErrors, Name: "gogate_gateway_errors_total", Help: "Non-2xx gateway responses outside the intercepted statuses."},
	{ID: goGate.MetricTransportErrors, Name: "gogate_transport_errors_total", Help: "Network-level request failures."},
}

// HistogramDefs is an exported constant or variable used by the gateway client.
var HistogramDefs = []HistogramDef{
	{ID: goGate.MetricRequestLatency, Name: "gogate_request_latency_seconds", Help: "Request latency histogram."},
	{ID: goGate.MetricRefreshLatency, Name: "gogate_refresh_latency_seconds", Help: "Refresh episode latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the gateway client.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the gateway client.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
