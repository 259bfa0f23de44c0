package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
)

// TokenSource returns the current bearer token, "" when logged out.
type TokenSource interface {
	Token() string
}

// Clearer drops the current token.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Option configures [Bearer].
type Option func(*bearerTransport)

// WithClearOn401 clears the session when a request carrying its token is
// answered with 401. A token replaced while the request was in flight is kept.
func WithClearOn401(c Clearer) Option {
	return func(t *bearerTransport) {
		t.clearer = c
	}
}

type bearerTransport struct {
	source  TokenSource
	next    http.RoundTripper
	clearer Clearer
}

// Bearer returns a RoundTripper that adds the source's token to every request
// that does not already carry an Authorization header. A nil next uses
// http.DefaultTransport.
func Bearer(source TokenSource, next http.RoundTripper, opts ...Option) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	t := &bearerTransport{source: source, next: next}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.source == nil || req.Header.Get("Authorization") != "" {
		return t.next.RoundTrip(req)
	}
	token := t.source.Token()
	if token == "" {
		return t.next.RoundTrip(req)
	}

	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.next.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || t.clearer == nil {
		return resp, err
	}
	if t.source.Token() == token {
		if clearErr := t.clearer.Clear(context.WithoutCancel(req.Context())); clearErr != nil {
			log.Printf("goConvert: clear session after 401: %v", clearErr)
		}
	}
	return resp, nil
}

// ParseBearer returns the token from an Authorization header value of the
// form "Bearer <token>".
func ParseBearer(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}
