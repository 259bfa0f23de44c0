package goConvert

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Config is the full Client configuration. Start from [DefaultConfig] and
// override fields; Builder.Build validates the result.
type Config struct {
	Converter ConverterConfig
	Session   SessionConfig
	Storage   StorageConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
CONVERTER CONFIG
====================================
*/

// ConverterConfig configures conversion requests.
type ConverterConfig struct {
	// BaseURL prefixes /currencies/convert/{from}/{to}.
	BaseURL        string
	Debounce       time.Duration
	RequestTimeout time.Duration
	// Locale is a BCP 47 tag for symbol formatting. Empty formats with ISO codes.
	Locale string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures the token exchange and the login form.
type SessionConfig struct {
	TokenURL     string
	TokenTimeout time.Duration
	StorageKey   string

	// Sent verbatim in the token form. All four default to empty; no grant
	// type is assumed.
	ClientID     string
	ClientSecret string
	GrantType    string
	Scopes       string

	// ExpiryLeeway is tolerated clock skew when restoring a stored JWT.
	ExpiryLeeway time.Duration
	// ClearOnUnauthorized logs out when the conversion API answers 401.
	ClearOnUnauthorized bool

	BannerVertical   string // "top" or "bottom"
	BannerHorizontal string // "left", "center" or "right"
	// BannerAutoHide hides a shown banner after this long. Zero keeps it until
	// dismissed.
	BannerAutoHide time.Duration
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageBackend selects the durable token store.
type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageBolt   StorageBackend = "bolt"
	StorageSQLite StorageBackend = "sqlite"
	StorageRedis  StorageBackend = "redis"
)

// StorageConfig configures where the durable token copy lives.
type StorageConfig struct {
	Backend StorageBackend
	// Path is the database file for bolt and sqlite.
	Path string
	// RedisPrefix namespaces keys for the redis backend.
	RedisPrefix string
	// RedisTTL expires the redis copy. Zero keeps it until logout.
	RedisTTL   time.Duration
	SlidingTTL bool
}

// AuditConfig configures the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Converter: ConverterConfig{
			BaseURL:        "http://localhost:8000",
			Debounce:       800 * time.Millisecond,
			RequestTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			TokenURL:            "http://localhost:8000/token",
			TokenTimeout:        10 * time.Second,
			StorageKey:          "token",
			ExpiryLeeway:        30 * time.Second,
			ClearOnUnauthorized: true,
			BannerVertical:      "bottom",
			BannerHorizontal:    "left",
			BannerAutoHide:      6 * time.Second,
		},
		Storage: StorageConfig{
			Backend:     StorageMemory,
			RedisPrefix: "goconvert",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate checks cfg and returns the first problem found, wrapped in
// [ErrInvalidConfig].
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}

	if err := validateURL(c.Converter.BaseURL); err != nil {
		return fmt.Errorf("%w: Converter.BaseURL: %v", ErrInvalidConfig, err)
	}
	if c.Converter.Debounce <= 0 {
		return fmt.Errorf("%w: Converter.Debounce must be > 0", ErrInvalidConfig)
	}
	if c.Converter.RequestTimeout <= 0 {
		return fmt.Errorf("%w: Converter.RequestTimeout must be > 0", ErrInvalidConfig)
	}
	if c.Converter.Locale != "" {
		if _, err := language.Parse(c.Converter.Locale); err != nil {
			return fmt.Errorf("%w: Converter.Locale: %v", ErrInvalidConfig, err)
		}
	}

	if err := validateURL(c.Session.TokenURL); err != nil {
		return fmt.Errorf("%w: Session.TokenURL: %v", ErrInvalidConfig, err)
	}
	if c.Session.TokenTimeout <= 0 {
		return fmt.Errorf("%w: Session.TokenTimeout must be > 0", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Session.StorageKey) == "" {
		return fmt.Errorf("%w: Session.StorageKey must not be empty", ErrInvalidConfig)
	}
	if c.Session.ExpiryLeeway < 0 {
		return fmt.Errorf("%w: Session.ExpiryLeeway must be >= 0", ErrInvalidConfig)
	}
	switch c.Session.BannerVertical {
	case "top", "bottom":
	default:
		return fmt.Errorf("%w: Session.BannerVertical must be top or bottom", ErrInvalidConfig)
	}
	switch c.Session.BannerHorizontal {
	case "left", "center", "right":
	default:
		return fmt.Errorf("%w: Session.BannerHorizontal must be left, center or right", ErrInvalidConfig)
	}
	if c.Session.BannerAutoHide < 0 {
		return fmt.Errorf("%w: Session.BannerAutoHide must be >= 0", ErrInvalidConfig)
	}

	switch c.Storage.Backend {
	case StorageMemory, StorageRedis:
	case StorageBolt, StorageSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("%w: Storage.Path is required for %s", ErrInvalidConfig, c.Storage.Backend)
		}
	default:
		return fmt.Errorf("%w: unknown Storage.Backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	if c.Storage.RedisTTL < 0 {
		return fmt.Errorf("%w: Storage.RedisTTL must be >= 0", ErrInvalidConfig)
	}
	if c.Storage.SlidingTTL && c.Storage.RedisTTL == 0 {
		return fmt.Errorf("%w: Storage.SlidingTTL requires Storage.RedisTTL", ErrInvalidConfig)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: Audit.BufferSize must be > 0 when audit is enabled", ErrInvalidConfig)
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return fmt.Errorf("%w: latency histograms require Metrics.Enabled", ErrInvalidConfig)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func (c Config) locale() language.Tag {
	if c.Converter.Locale == "" {
		return language.Und
	}
	tag, err := language.Parse(c.Converter.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}
