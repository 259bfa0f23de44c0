package converter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNoCurrencies is returned by New for an empty currency list.
	ErrNoCurrencies = errors.New("converter: currency list is empty")
	// ErrUnknownCurrency is returned when a code is not in the currency list.
	ErrUnknownCurrency = errors.New("converter: unknown currency")
	// ErrClosed is returned by operations on a closed Converter.
	ErrClosed = errors.New("converter: closed")
	// ErrTimeout marks a fetch that exceeded Options.RequestTimeout.
	ErrTimeout = errors.New("converter: request timed out")
)

var one = decimal.NewFromInt(1)

// CoerceAmount replaces a zero or negative amount with 1.
func CoerceAmount(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return one
	}
	return d
}

// ParseAmount parses raw input. Empty, unparsable, zero or negative input
// yields 1.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return one
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return one
	}
	return CoerceAmount(d)
}

// Converter is the debounced conversion state machine. It is safe for
// concurrent use.
type Converter struct {
	currencies []string
	allowed    map[string]struct{}
	fetch      Fetcher
	opts       Options
	debounce   *Debouncer

	ctx    context.Context
	stop   context.CancelFunc
	flight sync.WaitGroup

	mu          sync.Mutex
	from        string
	to          string
	amount      decimal.Decimal
	settled     decimal.Decimal
	result      Result
	unavailable bool
	err         error
	seq         uint64
	resolved    uint64
	cancel      context.CancelFunc
	started     bool
	closed      bool
	version     uint64

	// notifyMu serialises OnChange; delivered is the newest version handed out.
	notifyMu  sync.Mutex
	delivered uint64
}

// New returns a Converter with From and To set to currencies[0] and an amount
// of 1. No request is sent until Start.
func New(currencies []string, fetch Fetcher, opts Options) (*Converter, error) {
	if len(currencies) == 0 {
		return nil, ErrNoCurrencies
	}
	if fetch == nil {
		return nil, errors.New("converter: nil fetcher")
	}
	allowed := make(map[string]struct{}, len(currencies))
	for _, code := range currencies {
		allowed[code] = struct{}{}
	}
	ctx, stop := context.WithCancel(context.Background())
	c := &Converter{
		currencies: append([]string(nil), currencies...),
		allowed:    allowed,
		fetch:      fetch,
		opts:       opts.withDefaults(),
		ctx:        ctx,
		stop:       stop,
		from:       currencies[0],
		to:         currencies[0],
		amount:     one,
		settled:    one,
	}
	c.debounce = NewDebouncer(c.opts.Debounce, c.settle)
	return c, nil
}

// Currencies returns the selectable codes in order.
func (c *Converter) Currencies() []string {
	return append([]string(nil), c.currencies...)
}

// Start issues the initial request for the current state.
func (c *Converter) Start() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	req := c.issueLocked()
	view := c.publishLocked()
	c.mu.Unlock()

	c.opts.Observer.Issued(req)
	c.notify(view)
	return nil
}

// SetAmount records a new raw amount and arms the debouncer.
func (c *Converter) SetAmount(d decimal.Decimal) {
	d = CoerceAmount(d)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.amount = d
	view := c.publishLocked()
	c.mu.Unlock()

	c.notify(view)
	c.debounce.Trigger()
}

// SetAmountText parses raw and calls SetAmount.
func (c *Converter) SetAmountText(raw string) {
	c.SetAmount(ParseAmount(raw))
}

// Amount returns the latest raw amount.
func (c *Converter) Amount() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.amount
}

// AmountDebounced returns the settled amount used for requests.
func (c *Converter) AmountDebounced() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settled
}

// Flush settles a pending amount without waiting for the window.
func (c *Converter) Flush() bool {
	return c.debounce.Flush()
}

// SetFrom selects the source currency.
func (c *Converter) SetFrom(code string) error {
	return c.setPair(code, func(c *Converter) *string { return &c.from })
}

// SetTo selects the target currency.
func (c *Converter) SetTo(code string) error {
	return c.setPair(code, func(c *Converter) *string { return &c.to })
}

func (c *Converter) setPair(code string, field func(*Converter) *string) error {
	if _, ok := c.allowed[code]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	dst := field(c)
	if *dst == code {
		c.mu.Unlock()
		return nil
	}
	*dst = code
	c.changedLocked()
	return nil
}

// Switch swaps From and To. One request is issued when they differ.
func (c *Converter) Switch() {
	c.mu.Lock()
	if c.closed || c.from == c.to {
		c.mu.Unlock()
		return
	}
	c.from, c.to = c.to, c.from
	c.changedLocked()
}

// changedLocked issues a request for the new state if started, then unlocks
// and publishes.
func (c *Converter) changedLocked() {
	var (
		req    Request
		issued bool
	)
	if c.started {
		req = c.issueLocked()
		issued = true
	}
	view := c.publishLocked()
	c.mu.Unlock()

	if issued {
		c.opts.Observer.Issued(req)
	}
	c.notify(view)
}

// settle is the debouncer callback.
func (c *Converter) settle() {
	c.mu.Lock()
	if c.closed || c.amount.Equal(c.settled) {
		c.mu.Unlock()
		return
	}
	c.settled = c.amount
	c.changedLocked()
}

// issueLocked cancels the previous request and starts a new one.
func (c *Converter) issueLocked() Request {
	c.seq++
	req := Request{
		From:   c.from,
		To:     c.to,
		Amount: c.settled,
		Seq:    c.seq,
		ID:     uuid.NewString(),
	}
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithTimeout(c.ctx, c.opts.RequestTimeout)
	c.cancel = cancel
	c.flight.Add(1)
	go c.run(ctx, cancel, req)
	return req
}

func (c *Converter) run(ctx context.Context, cancel context.CancelFunc, req Request) {
	defer c.flight.Done()
	start := time.Now()
	res, err := c.fetch.Fetch(ctx, req)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	cancel()
	latency := time.Since(start)

	c.mu.Lock()
	if c.closed || req.Seq != c.seq {
		c.mu.Unlock()
		c.opts.Observer.Stale(req, latency)
		return
	}
	c.resolved = req.Seq
	if err != nil {
		c.unavailable = true
		c.err = err
	} else {
		if res.To == "" {
			res.To = req.To
		}
		c.result = res
		c.unavailable = false
		c.err = nil
	}
	view := c.publishLocked()
	c.mu.Unlock()

	if err != nil {
		c.opts.Observer.Failed(req, err, latency)
	} else {
		c.opts.Observer.Applied(req, latency)
	}
	c.notify(view)
}

// View returns a snapshot of the current state.
func (c *Converter) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// publishLocked stamps a new version on the state and snapshots it.
func (c *Converter) publishLocked() View {
	c.version++
	return c.viewLocked()
}

func (c *Converter) viewLocked() View {
	return View{
		From:            c.from,
		To:              c.to,
		Amount:          c.amount,
		AmountDebounced: c.settled,
		Result:          c.result,
		Unavailable:     c.unavailable,
		Err:             c.err,
		Pending:         c.seq > c.resolved,
		Seq:             c.seq,
		Version:         c.version,
		Display:         display(c.opts.Locale, c.settled, c.from, c.result, c.to, c.unavailable),
	}
}

// notify hands v to OnChange one call at a time. A snapshot older than one
// already delivered is dropped, so listeners never step back to stale state.
func (c *Converter) notify(v View) {
	if c.opts.OnChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if v.Version <= c.delivered {
		return
	}
	c.delivered = v.Version
	c.opts.OnChange(v)
}

// Close stops the debouncer, cancels the in-flight request and waits for it
// to return. Close is idempotent.
func (c *Converter) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.debounce.Stop()
	c.stop()
	c.flight.Wait()
	return nil
}
