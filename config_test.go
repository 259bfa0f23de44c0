package goConvert

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Converter.Debounce != 800*time.Millisecond {
		t.Fatalf("expected 800ms debounce, got %v", cfg.Converter.Debounce)
	}
	if cfg.Session.StorageKey != "token" {
		t.Fatalf("expected storage key token, got %q", cfg.Session.StorageKey)
	}
	if cfg.Session.ClientID != "" || cfg.Session.ClientSecret != "" || cfg.Session.GrantType != "" || cfg.Session.Scopes != "" {
		t.Fatal("token form fields must default to empty")
	}
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"relative base url", func(c *Config) { c.Converter.BaseURL = "/api" }, "Converter.BaseURL"},
		{"ftp token url", func(c *Config) { c.Session.TokenURL = "ftp://x/token" }, "Session.TokenURL"},
		{"zero debounce", func(c *Config) { c.Converter.Debounce = 0 }, "Debounce"},
		{"zero request timeout", func(c *Config) { c.Converter.RequestTimeout = 0 }, "RequestTimeout"},
		{"zero token timeout", func(c *Config) { c.Session.TokenTimeout = 0 }, "TokenTimeout"},
		{"bad locale", func(c *Config) { c.Converter.Locale = "not a tag!" }, "Locale"},
		{"empty key", func(c *Config) { c.Session.StorageKey = " " }, "StorageKey"},
		{"banner vertical", func(c *Config) { c.Session.BannerVertical = "middle" }, "BannerVertical"},
		{"banner horizontal", func(c *Config) { c.Session.BannerHorizontal = "up" }, "BannerHorizontal"},
		{"banner auto hide", func(c *Config) { c.Session.BannerAutoHide = -time.Second }, "BannerAutoHide"},
		{"bolt without path", func(c *Config) { c.Storage.Backend = StorageBolt }, "Storage.Path"},
		{"sqlite without path", func(c *Config) { c.Storage.Backend = StorageSQLite }, "Storage.Path"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "etcd" }, "Storage.Backend"},
		{"sliding without ttl", func(c *Config) { c.Storage.SlidingTTL = true }, "SlidingTTL"},
		{"audit buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }, "BufferSize"},
		{"histograms without metrics", func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.EnableLatencyHistograms = true
		}, "histograms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.TokenTimeout = -time.Second
	if _, err := New().WithConfig(cfg).Build(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
