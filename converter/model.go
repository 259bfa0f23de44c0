package converter

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// DefaultDebounce is the settle window applied when [Options.Debounce] is zero.
const DefaultDebounce = 800 * time.Millisecond

// DefaultRequestTimeout bounds a single fetch when [Options.RequestTimeout] is zero.
const DefaultRequestTimeout = 10 * time.Second

// Request is one conversion query built from the settled state.
type Request struct {
	From   string
	To     string
	Amount decimal.Decimal
	Seq    uint64
	ID     string
}

// Result is a conversion payload. Converted is invalid until a value arrives.
type Result struct {
	Converted decimal.NullDecimal
	To        string
}

// View is a point-in-time snapshot of converter state.
type View struct {
	From            string
	To              string
	Amount          decimal.Decimal
	AmountDebounced decimal.Decimal
	Result          Result
	// Unavailable is set when the latest request failed. Result keeps the last
	// good value.
	Unavailable bool
	Err         error
	Pending     bool
	Seq         uint64
	// Version increases with every state change.
	Version uint64
	Display string
}

// Fetcher performs one conversion request.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Result, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context, req Request) (Result, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Observer receives request lifecycle events. Implementations must be fast and
// must not call back into the Converter.
type Observer interface {
	Issued(req Request)
	Applied(req Request, latency time.Duration)
	Stale(req Request, latency time.Duration)
	Failed(req Request, err error, latency time.Duration)
}

type noopObserver struct{}

func (noopObserver) Issued(Request)                       {}
func (noopObserver) Applied(Request, time.Duration)       {}
func (noopObserver) Stale(Request, time.Duration)         {}
func (noopObserver) Failed(Request, error, time.Duration) {}

// Options configures a [Converter].
type Options struct {
	Debounce       time.Duration
	RequestTimeout time.Duration
	// OnChange receives a snapshot after state changes. Calls are serialised
	// and never step back to an older Version; a snapshot superseded before
	// delivery is skipped. It runs on the goroutine that caused the change and
	// must not modify the Converter.
	OnChange func(View)
	Observer Observer
	// Locale selects symbol formatting. The zero tag formats with ISO codes.
	Locale language.Tag
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.Observer == nil {
		o.Observer = noopObserver{}
	}
	return o
}
