package otel

import (
	"context"
	"errors"
	"fmt"

	goConvert "github.com/MrEthical07/goConvert"
	"github.com/MrEthical07/goConvert/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNilMeter is returned when no meter is supplied.
	ErrNilMeter = errors.New("nil meter")
	// ErrNilSource is returned when no client or source is supplied.
	ErrNilSource = errors.New("nil metrics source")
)

// MetricsSource is satisfied by *goConvert.Client.
type MetricsSource interface {
	MetricsSnapshot() goConvert.MetricsSnapshot
	AuditDropped() uint64
}

type observedCounter struct {
	id         goConvert.MetricID
	instrument metric.Int64ObservableCounter
}

type observedHistogram struct {
	id      goConvert.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// Exporter publishes client metrics through observable OTel instruments.
type Exporter struct {
	source       MetricsSource
	registration metric.Registration
	counters     []observedCounter
	histograms   []observedHistogram
	auditDropped metric.Int64ObservableCounter
}

// NewExporter registers instruments on meter that read from client.
func NewExporter(meter metric.Meter, client *goConvert.Client) (*Exporter, error) {
	if client == nil {
		return nil, ErrNilSource
	}
	return NewExporterFromSource(meter, client)
}

// NewExporterFromSource registers instruments on meter that read from source
// once per collection.
func NewExporterFromSource(meter metric.Meter, source MetricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{
		source:     source,
		counters:   make([]observedCounter, 0, len(internaldefs.CounterDefs)),
		histograms: make([]observedHistogram, 0, len(internaldefs.HistogramDefs)),
	}
	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+len(internaldefs.HistogramDefs)*9+1)

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		h, err := newObservedHistogram(meter, def)
		if err != nil {
			return nil, err
		}
		e.histograms = append(e.histograms, h)
		for _, b := range h.buckets {
			observables = append(observables, b)
		}
		observables = append(observables, h.count)
	}

	dropped, err := meter.Int64ObservableCounter(internaldefs.AuditDroppedName, metric.WithDescription(internaldefs.AuditDroppedHelp))
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	e.auditDropped = dropped
	observables = append(observables, dropped)

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func newObservedHistogram(meter metric.Meter, def internaldefs.HistogramDef) (observedHistogram, error) {
	h := observedHistogram{id: def.ID}
	for i, suffix := range internaldefs.HistogramBoundSuffix {
		name := def.Name + "_bucket_le_" + suffix
		ins, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative histogram bucket count."))
		if err != nil {
			return h, fmt.Errorf("create histogram bucket gauge %s: %w", name, err)
		}
		h.buckets[i] = ins
	}
	countName := def.Name + "_count"
	count, err := meter.Int64ObservableGauge(countName, metric.WithDescription(def.Help+" Sample count."))
	if err != nil {
		return h, fmt.Errorf("create histogram count gauge %s: %w", countName, err)
	}
	h.count = count
	return h, nil
}

func (e *Exporter) observe(_ context.Context, o metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		o.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
	}
	for _, h := range e.histograms {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[h.id]))
		for i, v := range cumulative {
			o.ObserveInt64(h.buckets[i], int64(v))
		}
		o.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
	}
	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
