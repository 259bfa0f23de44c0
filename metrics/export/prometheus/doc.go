// Package prometheus renders goConvert client metrics in Prometheus text exposition
// format.
//
// [NewExporter] wraps a *goConvert.Client and exposes an [http.Handler]. Counters are
// named goconvert_*_total; latency histograms are goconvert_*_latency_seconds and only
// appear when latency histograms are enabled.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate client state.
package prometheus
