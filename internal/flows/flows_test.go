package flows

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestConvertURL(t *testing.T) {
	got := ConvertURL("http://api.local/", ConvertRequest{From: "USD", To: "EUR", Amount: decimal.RequireFromString("12.5")})
	want := "http://api.local/currencies/convert/USD/EUR?amount=12.5"
	if got != want {
		t.Fatalf("ConvertURL() = %q, want %q", got, want)
	}
}

func TestRunConvertDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/currencies/convert/USD/GBP" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("amount") != "3" {
			t.Errorf("unexpected amount %q", r.URL.Query().Get("amount"))
		}
		if r.Header.Get(RequestIDHeader) != "req-1" {
			t.Errorf("missing request id header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"converted": 2.37, "rate": 0.79}`))
	}))
	defer srv.Close()

	resp, err := RunConvert(context.Background(), ConvertRequest{
		From: "USD", To: "GBP", Amount: decimal.NewFromInt(3), RequestID: "req-1",
	}, ConvertDeps{Client: srv.Client(), BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("RunConvert() error = %v", err)
	}
	if !resp.Converted.Valid || !resp.Converted.Decimal.Equal(decimal.RequireFromString("2.37")) {
		t.Fatalf("unexpected converted %v", resp.Converted)
	}
	if resp.To != "GBP" {
		t.Fatalf("expected To defaulted to GBP, got %q", resp.To)
	}
}

func TestRunConvertMissingConvertedIsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := RunConvert(context.Background(), ConvertRequest{From: "USD", To: "USD", Amount: decimal.NewFromInt(1)},
		ConvertDeps{Client: srv.Client(), BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("RunConvert() error = %v", err)
	}
	if resp.Converted.Valid {
		t.Fatal("expected converted to be absent")
	}
}

func TestRunTokenExchangeSendsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", ct)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("unexpected accept %q", accept)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		for _, field := range []string{"client_id", "client_secret", "grant_type", "scopes"} {
			if _, ok := r.PostForm[field]; !ok {
				t.Errorf("missing form field %s", field)
			}
			if v := r.PostForm.Get(field); v != "" {
				t.Errorf("expected blank %s, got %q", field, v)
			}
		}
		if r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "pw" {
			t.Errorf("unexpected credentials %v", r.PostForm)
		}
		w.Write([]byte(`{"access_token":"abc","token_type":"bearer"}`))
	}))
	defer srv.Close()

	resp, err := RunTokenExchange(context.Background(), TokenRequest{Username: "alice", Password: "pw"},
		TokenDeps{Client: srv.Client(), TokenURL: srv.URL + "/token"})
	if err != nil {
		t.Fatalf("RunTokenExchange() error = %v", err)
	}
	if resp.AccessToken != "abc" {
		t.Fatalf("expected abc, got %q", resp.AccessToken)
	}
}

func TestRunTokenExchangeEmptyTokenIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer srv.Close()

	_, err := RunTokenExchange(context.Background(), TokenRequest{}, TokenDeps{Client: srv.Client(), TokenURL: srv.URL})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if f := Classify(err, time.Second); f.Kind != KindMalformed {
		t.Fatalf("expected malformed kind, got %v", f.Kind)
	}
}

func TestClassifyHTTPFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantText string
	}{
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"detail":"Incorrect username or password"}`,
			wantKind: KindUnauthorized,
		},
		{
			name:     "server error with code and message",
			status:   http.StatusInternalServerError,
			body:     `{"code":"E1","message":"boom"}`,
			wantKind: KindHTTP,
			wantText: "E1: boom",
		},
		{
			name:     "server error without body",
			status:   http.StatusBadGateway,
			wantKind: KindHTTP,
			wantText: "ERR_BAD_RESPONSE: Request failed with status code 502",
		},
		{
			name:     "client error with detail",
			status:   http.StatusUnprocessableEntity,
			body:     `{"detail":"field required"}`,
			wantKind: KindHTTP,
			wantText: "ERR_BAD_REQUEST: field required",
		},
		{
			name:     "numeric code and list detail",
			status:   http.StatusBadRequest,
			body:     `{"code":42,"detail":[{"loc":["body"]}]}`,
			wantKind: KindHTTP,
			wantText: "42: Request failed with status code 400",
		},
		{
			name:     "non json body",
			status:   http.StatusServiceUnavailable,
			body:     `<html>down</html>`,
			wantKind: KindHTTP,
			wantText: "ERR_BAD_RESPONSE: Request failed with status code 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := RunTokenExchange(context.Background(), TokenRequest{Username: "u"}, TokenDeps{Client: srv.Client(), TokenURL: srv.URL})
			if err == nil {
				t.Fatal("expected error")
			}
			f := Classify(err, time.Second)
			if f.Kind != tt.wantKind {
				t.Fatalf("Classify() kind = %v, want %v", f.Kind, tt.wantKind)
			}
			if f.Status != tt.status {
				t.Fatalf("Classify() status = %d, want %d", f.Status, tt.status)
			}
			if tt.wantText != "" && f.Text() != tt.wantText {
				t.Fatalf("Classify() text = %q, want %q", f.Text(), tt.wantText)
			}
		})
	}
}

func TestClassifyTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := RunConvert(ctx, ConvertRequest{From: "USD", To: "EUR", Amount: decimal.NewFromInt(1)},
		ConvertDeps{Client: srv.Client(), BaseURL: srv.URL})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	f := Classify(err, 50*time.Millisecond)
	if f.Kind != KindTimeout || f.Text() != "ECONNABORTED: timeout of 50ms exceeded" {
		t.Fatalf("unexpected failure %+v", f)
	}
}

func TestClassifyNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := RunTokenExchange(context.Background(), TokenRequest{}, TokenDeps{Client: http.DefaultClient, TokenURL: url})
	if err == nil {
		t.Fatal("expected transport error")
	}
	f := Classify(err, time.Second)
	if f.Kind != KindNetwork || f.Code != CodeNetwork {
		t.Fatalf("unexpected failure %+v", f)
	}
	if !strings.HasPrefix(f.Text(), "ERR_NETWORK: ") {
		t.Fatalf("unexpected text %q", f.Text())
	}
}

func TestClassifyCanceled(t *testing.T) {
	f := Classify(context.Canceled, time.Second)
	if f.Code != CodeCanceled {
		t.Fatalf("expected canceled code, got %+v", f)
	}
	if Classify(nil, time.Second).Kind != KindNone {
		t.Fatal("nil error must classify as none")
	}
}

type clearRecorder struct{ calls int }

func (c *clearRecorder) Clear(context.Context) error {
	c.calls++
	return nil
}

func TestServiceDelegates(t *testing.T) {
	rec := &clearRecorder{}
	svc := New(Deps{Logout: LogoutDeps{Session: rec}})
	if svc.Initialized() {
		t.Fatal("service without http clients must not report initialized")
	}
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.calls != 1 {
		t.Fatalf("expected one clear, got %d", rec.calls)
	}
	if err := RunLogout(context.Background(), LogoutDeps{}); err == nil {
		t.Fatal("expected error without session")
	}
}
