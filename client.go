package goConvert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goConvert/converter"
	"github.com/MrEthical07/goConvert/internal/flows"
	"github.com/MrEthical07/goConvert/session"
	"golang.org/x/text/language"
)

// Client is the entry point for both flows. It owns the session, the HTTP
// wiring, metrics and audit. Methods are safe for concurrent use.
type Client struct {
	config    Config
	session   *session.Session
	flows     flows.Service
	navigator Navigator
	metrics   *Metrics
	audit     *auditDispatcher
	locale    language.Tag
	closers   []io.Closer

	mu         sync.Mutex
	converters []*converter.Converter
	forms      []*LoginForm
	closed     atomic.Bool
}

// Config returns a copy of the validated configuration.
func (c *Client) Config() Config {
	return c.config
}

// Session returns the token holder shared by every component of c.
func (c *Client) Session() *session.Session {
	return c.session
}

// Converter returns a debounced converter over currencies that fetches
// through c. onChange may be nil. The caller starts it with Start; Close on
// the Client closes it too.
func (c *Client) Converter(currencies []string, onChange func(converter.View)) (*converter.Converter, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	conv, err := converter.New(currencies, converter.FetcherFunc(c.fetchConversion), converter.Options{
		Debounce:       c.config.Converter.Debounce,
		RequestTimeout: c.config.Converter.RequestTimeout,
		OnChange:       onChange,
		Observer:       conversionObserver{metrics: c.metrics},
		Locale:         c.locale,
	})
	if err != nil {
		return nil, err
	}

	// Close flips closed before taking mu, so checking again under mu means
	// no converter is registered after Close has collected the list.
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		_ = conv.Close()
		return nil, ErrClientClosed
	}
	c.converters = append(c.converters, conv)
	c.mu.Unlock()
	return conv, nil
}

func (c *Client) fetchConversion(ctx context.Context, req converter.Request) (converter.Result, error) {
	resp, err := c.flows.Convert(ctx, flows.ConvertRequest{
		From:      req.From,
		To:        req.To,
		Amount:    req.Amount,
		RequestID: req.ID,
	})
	if err != nil {
		if errors.Is(err, flows.ErrTimeout) {
			return converter.Result{}, fmt.Errorf("%w: %w", converter.ErrTimeout, err)
		}
		return converter.Result{}, err
	}
	if !resp.Converted.Valid {
		return converter.Result{}, fmt.Errorf("%w: missing converted", flows.ErrMalformedResponse)
	}
	return converter.Result{Converted: resp.Converted, To: resp.To}, nil
}

// Logout drops the token and its durable copy without any network call.
// It is idempotent.
func (c *Client) Logout(ctx context.Context) error {
	err := c.flows.Logout(ctx)
	c.metrics.Inc(MetricLogout)
	c.emitAudit(ctx, auditEventLogout, err == nil, "", err, nil)
	return err
}

// Restore loads the durable token written by an earlier run. It returns ""
// and a nil error when nothing was stored. An expired JWT is deleted and
// reported with [session.ErrTokenExpired].
func (c *Client) Restore(ctx context.Context) (string, error) {
	token, err := c.session.Restore(ctx)
	switch {
	case err == nil && token != "":
		c.metrics.Inc(MetricTokenRestored)
		c.emitAudit(ctx, auditEventRestore, true, tokenSubject(token), nil, nil)
	case errors.Is(err, session.ErrTokenExpired):
		c.metrics.Inc(MetricTokenExpired)
		c.emitAudit(ctx, auditEventRestore, false, "", err, nil)
	case err != nil:
		c.emitAudit(ctx, auditEventRestore, false, "", err, nil)
	}
	return token, err
}

// MetricsSnapshot copies the current counters and histograms.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped on a full queue.
func (c *Client) AuditDropped() uint64 {
	return c.audit.Dropped()
}

// Close stops converters and login forms created by c, flushes audit and
// closes stores c opened. The durable token is left in place.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	converters := c.converters
	forms := c.forms
	c.converters, c.forms = nil, nil
	c.mu.Unlock()

	var errs []error
	for _, conv := range converters {
		errs = append(errs, conv.Close())
	}
	for _, f := range forms {
		f.Close()
	}
	c.audit.Close()
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			log.Printf("goConvert: close token store: %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// conversionObserver feeds converter lifecycle events into Metrics.
type conversionObserver struct {
	metrics *Metrics
}

func (o conversionObserver) Issued(converter.Request) {
	o.metrics.Inc(MetricConversionIssued)
}

func (o conversionObserver) Applied(_ converter.Request, latency time.Duration) {
	o.metrics.Inc(MetricConversionApplied)
	o.metrics.Observe(MetricConversionLatency, latency)
}

func (o conversionObserver) Stale(converter.Request, time.Duration) {
	o.metrics.Inc(MetricConversionStale)
}

func (o conversionObserver) Failed(_ converter.Request, err error, latency time.Duration) {
	o.metrics.Inc(MetricConversionFailure)
	if errors.Is(err, converter.ErrTimeout) {
		o.metrics.Inc(MetricConversionTimeout)
	}
	o.metrics.Observe(MetricConversionLatency, latency)
}
