package stubserver

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestUsersAuthenticate(t *testing.T) {
	users, err := NewUsers(DefaultHashConfig())
	if err != nil {
		t.Fatalf("NewUsers: %v", err)
	}
	id, err := users.Add("alice", "correct-horse")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := users.Add("alice", "other"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate add err = %v", err)
	}
	if _, err := users.Add("", "x"); !errors.Is(err, ErrEmptyCredentials) {
		t.Fatalf("empty add err = %v", err)
	}

	if got, ok := users.Authenticate("alice", "correct-horse"); !ok || got != id {
		t.Fatalf("Authenticate = %q %v", got, ok)
	}
	if _, ok := users.Authenticate("alice", "wrong"); ok {
		t.Fatal("wrong password accepted")
	}
	if _, ok := users.Authenticate("nobody", "correct-horse"); ok {
		t.Fatal("unknown user accepted")
	}
	if users.Len() != 1 {
		t.Fatalf("Len = %d", users.Len())
	}
}

func TestHashEncoding(t *testing.T) {
	users, _ := NewUsers(DefaultHashConfig())
	encoded, err := users.hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected prefix: %s", encoded)
	}
	if ok, err := verifyHash("pw", encoded); err != nil || !ok {
		t.Fatalf("verifyHash = %v %v", ok, err)
	}

	bad := []string{
		"",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1,x=2$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$short$a2V5",
	}
	for _, in := range bad {
		if _, err := verifyHash("pw", in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestHashConfigValidation(t *testing.T) {
	cfg := DefaultHashConfig()
	cfg.Memory = 1024
	if _, err := NewUsers(cfg); err == nil {
		t.Fatal("expected memory validation error")
	}
	cfg = DefaultHashConfig()
	cfg.SaltLength = 8
	if _, err := NewUsers(cfg); err == nil {
		t.Fatal("expected salt validation error")
	}
}

func TestRatesConvert(t *testing.T) {
	rates := DefaultRates()

	tests := []struct {
		amount, from, to, want string
	}{
		{amount: "42", from: "USD", to: "USD", want: "42"},
		{amount: "100", from: "eur", to: "usd", want: "108.6957"},
		{amount: "1", from: "USD", to: "JPY", want: "151.5"},
	}
	for _, tt := range tests {
		got, err := rates.Convert(decimal.RequireFromString(tt.amount), tt.from, tt.to)
		if err != nil {
			t.Fatalf("Convert(%s %s->%s): %v", tt.amount, tt.from, tt.to, err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Fatalf("Convert(%s %s->%s) = %s, want %s", tt.amount, tt.from, tt.to, got, tt.want)
		}
	}
	if _, err := rates.Convert(decimal.NewFromInt(1), "USD", "XXX"); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("unknown err = %v", err)
	}
}
