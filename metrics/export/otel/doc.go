// Package otel binds goConvert client metrics to OpenTelemetry observable instruments.
//
// [NewExporter] registers one Int64ObservableCounter per counter and one
// Int64ObservableGauge per histogram bucket, plus a count gauge. A single callback reads
// the client's MetricsSnapshot on each collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate client state.
package otel
