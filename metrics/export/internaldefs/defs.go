package internaldefs

import (
	goConvert "github.com/MrEthical07/goConvert"
)

// CounterDef binds a counter MetricID to its exported name.
type CounterDef struct {
	ID   goConvert.MetricID
	Name string
	Help string
}

// HistogramDef binds a latency MetricID to its exported name.
type HistogramDef struct {
	ID   goConvert.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exported for dropped audit events.
const AuditDroppedName = "goconvert_audit_dropped_total"

// AuditDroppedHelp describes [AuditDroppedName].
const AuditDroppedHelp = "Audit events dropped because the dispatcher queue was full."

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: goConvert.MetricLoginSuccess, Name: "goconvert_login_success_total", Help: "Login submits that obtained a token."},
	{ID: goConvert.MetricLoginFailure, Name: "goconvert_login_failure_total", Help: "Login submits that failed for any reason."},
	{ID: goConvert.MetricLoginUnauthorized, Name: "goconvert_login_unauthorized_total", Help: "Login submits rejected with 401."},
	{ID: goConvert.MetricLoginTimeout, Name: "goconvert_login_timeout_total", Help: "Login submits that timed out."},
	{ID: goConvert.MetricLoginBusy, Name: "goconvert_login_busy_total", Help: "Login submits refused while another was in flight."},
	{ID: goConvert.MetricLogout, Name: "goconvert_logout_total", Help: "Logout operations."},
	{ID: goConvert.MetricNavigate, Name: "goconvert_navigate_total", Help: "Post-login navigations."},
	{ID: goConvert.MetricTokenRestored, Name: "goconvert_token_restored_total", Help: "Stored tokens restored at start-up."},
	{ID: goConvert.MetricTokenExpired, Name: "goconvert_token_expired_total", Help: "Stored tokens discarded as expired at start-up."},
	{ID: goConvert.MetricConversionIssued, Name: "goconvert_conversion_issued_total", Help: "Conversion requests issued."},
	{ID: goConvert.MetricConversionApplied, Name: "goconvert_conversion_applied_total", Help: "Conversion responses applied to the view."},
	{ID: goConvert.MetricConversionStale, Name: "goconvert_conversion_stale_total", Help: "Conversion responses discarded as superseded."},
	{ID: goConvert.MetricConversionFailure, Name: "goconvert_conversion_failure_total", Help: "Conversion requests that failed."},
	{ID: goConvert.MetricConversionTimeout, Name: "goconvert_conversion_timeout_total", Help: "Conversion requests that timed out."},
}

// HistogramDefs lists every exported latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: goConvert.MetricConversionLatency, Name: "goconvert_conversion_latency_seconds", Help: "Conversion round-trip latency."},
	{ID: goConvert.MetricTokenExchangeLatency, Name: "goconvert_token_exchange_latency_seconds", Help: "Token exchange round-trip latency."},
}

// HistogramBounds are the upper bounds, in seconds, of the eight buckets.
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

// HistogramBoundSuffix is HistogramBounds rendered for instrument names.
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

// NormalizeBuckets copies raw into a fixed array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
