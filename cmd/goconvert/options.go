package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	goConvert "github.com/MrEthical07/goConvert"
)

type options struct {
	baseURL        string
	tokenURL       string
	currencies     []string
	storage        goConvert.StorageBackend
	storagePath    string
	redisAddr      string
	debounce       time.Duration
	requestTimeout time.Duration
	tokenTimeout   time.Duration
	locale         string
	destination    string
	auditLog       string
	metricsAddr    string
}

// parseOptions reads GOCONVERT_* variables through getenv, then lets args override them.
func parseOptions(args []string, getenv func(string) string, stderr io.Writer) (options, error) {
	defaults := goConvert.DefaultConfig()
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}
	envDuration := func(key string, fallback time.Duration) (time.Duration, error) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return fallback, nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil
	}

	debounce, err := envDuration("GOCONVERT_DEBOUNCE", defaults.Converter.Debounce)
	if err != nil {
		return options{}, err
	}
	requestTimeout, err := envDuration("GOCONVERT_REQUEST_TIMEOUT", defaults.Converter.RequestTimeout)
	if err != nil {
		return options{}, err
	}
	tokenTimeout, err := envDuration("GOCONVERT_TOKEN_TIMEOUT", defaults.Session.TokenTimeout)
	if err != nil {
		return options{}, err
	}

	var (
		o          options
		currencies string
		storage    string
	)
	fs := flag.NewFlagSet("goconvert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.baseURL, "base-url", env("GOCONVERT_BASE_URL", defaults.Converter.BaseURL), "conversion API base URL")
	fs.StringVar(&o.tokenURL, "token-url", env("GOCONVERT_TOKEN_URL", ""), "token endpoint (default <base-url>/token)")
	fs.StringVar(&currencies, "currencies", env("GOCONVERT_CURRENCIES", "USD,EUR,GBP,JPY"), "comma-separated currency codes")
	fs.StringVar(&storage, "storage", env("GOCONVERT_STORAGE", string(goConvert.StorageBolt)), "token storage: bolt, sqlite, redis or memory")
	fs.StringVar(&o.storagePath, "storage-path", env("GOCONVERT_STORAGE_PATH", "goconvert.db"), "database file for bolt and sqlite")
	fs.StringVar(&o.redisAddr, "redis", env("GOCONVERT_REDIS_ADDR", ""), "redis address; empty starts an in-process miniredis")
	fs.DurationVar(&o.debounce, "debounce", debounce, "amount debounce window")
	fs.DurationVar(&o.requestTimeout, "request-timeout", requestTimeout, "conversion request timeout")
	fs.DurationVar(&o.tokenTimeout, "token-timeout", tokenTimeout, "token request timeout")
	fs.StringVar(&o.locale, "locale", env("GOCONVERT_LOCALE", ""), "BCP 47 locale for currency symbols")
	fs.StringVar(&o.destination, "destination", env("GOCONVERT_DESTINATION", "/convert"), "post-login destination")
	fs.StringVar(&o.auditLog, "audit-log", env("GOCONVERT_AUDIT_LOG", ""), "append audit events as JSON lines to this file")
	fs.StringVar(&o.metricsAddr, "metrics-addr", env("GOCONVERT_METRICS_ADDR", ""), "serve Prometheus metrics on this address")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if o.tokenURL == "" {
		o.tokenURL = strings.TrimRight(o.baseURL, "/") + "/token"
	}
	for _, code := range strings.Split(currencies, ",") {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			o.currencies = append(o.currencies, code)
		}
	}
	if len(o.currencies) == 0 {
		return options{}, fmt.Errorf("at least one currency is required")
	}
	o.storage = goConvert.StorageBackend(strings.ToLower(storage))
	switch o.storage {
	case goConvert.StorageBolt, goConvert.StorageSQLite, goConvert.StorageRedis, goConvert.StorageMemory:
	default:
		return options{}, fmt.Errorf("unknown storage backend %q", storage)
	}
	return o, nil
}

func (o options) config() goConvert.Config {
	cfg := goConvert.DefaultConfig()
	cfg.Converter.BaseURL = o.baseURL
	cfg.Converter.Debounce = o.debounce
	cfg.Converter.RequestTimeout = o.requestTimeout
	cfg.Converter.Locale = o.locale
	cfg.Session.TokenURL = o.tokenURL
	cfg.Session.TokenTimeout = o.tokenTimeout
	cfg.Storage.Backend = o.storage
	cfg.Storage.Path = o.storagePath
	cfg.Audit.Enabled = o.auditLog != ""
	return cfg
}
