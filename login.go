package goConvert

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goConvert/internal/flows"
	"github.com/MrEthical07/goConvert/session"
)

// UnauthorizedMessage is the banner text for a 401 from the token endpoint.
const UnauthorizedMessage = "Incorrect Username or Password"

// Failure is a classified token exchange or conversion error.
type Failure = flows.Failure

// FailureKind is the coarse classification of a [Failure].
type FailureKind = flows.Kind

const (
	FailureNone         = flows.KindNone
	FailureUnauthorized = flows.KindUnauthorized
	FailureHTTP         = flows.KindHTTP
	FailureTimeout      = flows.KindTimeout
	FailureNetwork      = flows.KindNetwork
	FailureMalformed    = flows.KindMalformed
)

// Navigator moves the user to destination once a token is held.
type Navigator interface {
	Navigate(destination string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(destination string)

// Navigate calls f.
func (f NavigatorFunc) Navigate(destination string) { f(destination) }

// Credentials are the transient login inputs. They are never persisted.
type Credentials struct {
	Username string
	Password string
}

// Banner is the dismissible error shown after a failed submit.
type Banner struct {
	Visible    bool
	Message    string
	Vertical   string
	Horizontal string
}

// SubmitStatus is the terminal state of one Submit call.
type SubmitStatus uint8

const (
	// SubmitAuthenticated means a token was obtained and stored.
	SubmitAuthenticated SubmitStatus = iota + 1
	// SubmitRejected means the token endpoint answered 401.
	SubmitRejected
	// SubmitFailed covers every other failure.
	SubmitFailed
	// SubmitBusy means another Submit was in flight; nothing was sent.
	SubmitBusy
)

// String returns the lower-case status name.
func (s SubmitStatus) String() string {
	switch s {
	case SubmitAuthenticated:
		return "authenticated"
	case SubmitRejected:
		return "rejected"
	case SubmitFailed:
		return "failed"
	case SubmitBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// SubmitResult reports how a Submit ended. Failure is zero unless Status is
// SubmitRejected or SubmitFailed.
type SubmitResult struct {
	Status  SubmitStatus
	Failure Failure
}

// LoginForm holds the state of one login screen: credentials, the error
// banner and the in-flight flag. It navigates to its destination exactly once
// for every new non-empty token the session receives.
type LoginForm struct {
	client      *Client
	destination string
	inFlight    atomic.Bool
	unsubscribe func()

	mu        sync.Mutex
	creds     Credentials
	banner    Banner
	hideTimer *time.Timer
	navigated string
	closed    bool
}

// LoginForm mounts a login form that navigates to destination. If the
// session already holds a token the form navigates immediately. A form
// created after Close is returned already closed.
func (c *Client) LoginForm(destination string) *LoginForm {
	f := &LoginForm{
		client:      c,
		destination: destination,
		banner: Banner{
			Vertical:   c.config.Session.BannerVertical,
			Horizontal: c.config.Session.BannerHorizontal,
		},
	}
	f.unsubscribe = c.session.Subscribe(func(ch session.Change) {
		f.tokenChanged(ch.Current)
	})

	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		f.Close()
		return f
	}
	c.forms = append(c.forms, f)
	c.mu.Unlock()

	f.tokenChanged(c.session.Token())
	return f
}

// Destination returns the navigation target.
func (f *LoginForm) Destination() string {
	return f.destination
}

// SetUsername updates the username field.
func (f *LoginForm) SetUsername(username string) {
	f.mu.Lock()
	f.creds.Username = username
	f.mu.Unlock()
}

// SetPassword updates the password field. It is held in memory only.
func (f *LoginForm) SetPassword(password string) {
	f.mu.Lock()
	f.creds.Password = password
	f.mu.Unlock()
}

// Banner returns the current banner state.
func (f *LoginForm) Banner() Banner {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banner
}

// DismissBanner hides the banner and keeps its message.
func (f *LoginForm) DismissBanner() {
	f.mu.Lock()
	f.banner.Visible = false
	f.stopHideLocked()
	f.mu.Unlock()
}

// armHideLocked schedules the banner shown now to be hidden after
// SessionConfig.BannerAutoHide.
func (f *LoginForm) armHideLocked() {
	f.stopHideLocked()
	after := f.client.config.Session.BannerAutoHide
	if after <= 0 || f.closed {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(after, func() {
		f.mu.Lock()
		if f.hideTimer == t {
			f.banner.Visible = false
			f.hideTimer = nil
		}
		f.mu.Unlock()
	})
	f.hideTimer = t
}

func (f *LoginForm) stopHideLocked() {
	if f.hideTimer != nil {
		f.hideTimer.Stop()
		f.hideTimer = nil
	}
}

// InFlight reports whether a Submit is outstanding. Callers disable the
// submit control while it is true.
func (f *LoginForm) InFlight() bool {
	return f.inFlight.Load()
}

// Submit exchanges the credentials for a token. It never returns an error:
// failures clear the session and surface through the banner and the result.
// A Submit made while another is outstanding returns SubmitBusy without
// sending anything.
func (f *LoginForm) Submit(ctx context.Context) SubmitResult {
	c := f.client
	if !f.inFlight.CompareAndSwap(false, true) {
		c.metrics.Inc(MetricLoginBusy)
		c.emitAudit(ctx, auditEventLoginBusy, false, "", errSubmitBusy, nil)
		return SubmitResult{Status: SubmitBusy}
	}
	defer f.inFlight.Store(false)

	f.mu.Lock()
	creds := f.creds
	f.banner.Visible = false
	f.banner.Message = ""
	f.stopHideLocked()
	f.mu.Unlock()

	cfg := c.config.Session
	reqCtx, cancel := context.WithTimeout(ctx, cfg.TokenTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.flows.ExchangeToken(reqCtx, flows.TokenRequest{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		GrantType:    cfg.GrantType,
		Scopes:       cfg.Scopes,
		Username:     creds.Username,
		Password:     creds.Password,
	})
	c.metrics.Observe(MetricTokenExchangeLatency, time.Since(start))

	// The request context may already be spent; storage writes must still land.
	storeCtx := context.WithoutCancel(ctx)

	if err == nil {
		if setErr := c.session.SetToken(storeCtx, resp.AccessToken); setErr != nil {
			log.Printf("goConvert: persist token: %v", setErr)
		}
		c.metrics.Inc(MetricLoginSuccess)
		c.emitAudit(ctx, auditEventLoginSuccess, true, tokenSubject(resp.AccessToken), nil, nil)
		return SubmitResult{Status: SubmitAuthenticated}
	}

	failure := flows.Classify(err, cfg.TokenTimeout)
	status := SubmitFailed
	message := failure.Text()
	if failure.Kind == flows.KindUnauthorized {
		status = SubmitRejected
		message = UnauthorizedMessage
	}

	if clearErr := c.session.Clear(storeCtx); clearErr != nil {
		log.Printf("goConvert: clear token after failed login: %v", clearErr)
	}

	f.mu.Lock()
	f.banner.Visible = true
	f.banner.Message = message
	f.armHideLocked()
	f.mu.Unlock()

	c.metrics.Inc(MetricLoginFailure)
	switch failure.Kind {
	case flows.KindUnauthorized:
		c.metrics.Inc(MetricLoginUnauthorized)
	case flows.KindTimeout:
		c.metrics.Inc(MetricLoginTimeout)
	}
	c.emitAudit(ctx, auditEventLoginFailure, false, "", err, map[string]string{"code": failure.Code})

	return SubmitResult{Status: status, Failure: failure}
}

// tokenChanged navigates once per distinct non-empty token. Logging out
// re-arms navigation.
func (f *LoginForm) tokenChanged(token string) {
	f.mu.Lock()
	if token == "" {
		f.navigated = ""
	}
	if f.closed || token == "" || token == f.navigated || f.client.session.Token() != token {
		f.mu.Unlock()
		return
	}
	f.navigated = token
	f.mu.Unlock()

	c := f.client
	c.metrics.Inc(MetricNavigate)
	c.emitAudit(context.Background(), auditEventNavigate, true, tokenSubject(token), nil,
		map[string]string{"destination": f.destination})
	if c.navigator != nil {
		c.navigator.Navigate(f.destination)
	}
}

// Close unmounts the form. Later token changes no longer navigate.
func (f *LoginForm) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.creds = Credentials{}
	f.stopHideLocked()
	f.mu.Unlock()
	f.unsubscribe()
}
