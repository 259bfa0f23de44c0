package goConvert

import (
	"fmt"
	"io"
	"net/http"

	"github.com/MrEthical07/goConvert/internal/flows"
	"github.com/MrEthical07/goConvert/jwt"
	"github.com/MrEthical07/goConvert/middleware"
	"github.com/MrEthical07/goConvert/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Client]. Configure it during initialization, call
// Build once, then discard it.
type Builder struct {
	config     Config
	store      session.Store
	redis      redis.UniversalClient
	httpClient *http.Client
	navigator  Navigator
	auditSink  AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore supplies the durable token store directly. It takes precedence
// over Storage.Backend, and the Client does not close it.
func (b *Builder) WithStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis supplies the client used by the redis storage backend.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient sets the base HTTP client. Its Transport is reused for both
// APIs; its Timeout is ignored in favour of the per-request timeouts in Config.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithNavigator sets where login forms navigate after a token is obtained.
func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

// WithAuditSink enables audit events delivered to sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles conversion and token exchange histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, opens the token store and returns a
// ready Client. The store is empty in memory until Client.Restore runs.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, closer, err := b.openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	sess := session.New(store, session.Config{
		Key:       cfg.Session.StorageKey,
		ExpiresAt: jwt.ExpiresAt,
		Leeway:    cfg.Session.ExpiryLeeway,
	})

	base := b.httpClient
	if base == nil {
		base = &http.Client{}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	var bearerOpts []middleware.Option
	if cfg.Session.ClearOnUnauthorized {
		bearerOpts = append(bearerOpts, middleware.WithClearOn401(sess))
	}
	convertClient := &http.Client{
		Transport:     middleware.Bearer(sess, transport, bearerOpts...),
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
	}
	tokenClient := &http.Client{
		Transport:     transport,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
	}

	client := &Client{
		config:    cfg,
		session:   sess,
		navigator: b.navigator,
		metrics:   NewMetrics(cfg.Metrics),
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		locale:    cfg.locale(),
		flows: flows.New(flows.Deps{
			Convert: flows.ConvertDeps{Client: convertClient, BaseURL: cfg.Converter.BaseURL},
			Token:   flows.TokenDeps{Client: tokenClient, TokenURL: cfg.Session.TokenURL},
			Logout:  flows.LogoutDeps{Session: sess},
		}),
	}
	if closer != nil {
		client.closers = append(client.closers, closer)
	}

	b.built = true
	return client, nil
}

func (b *Builder) openStore(cfg StorageConfig) (session.Store, io.Closer, error) {
	if b.store != nil {
		return b.store, nil, nil
	}

	switch cfg.Backend {
	case StorageBolt:
		s, err := session.OpenBoltStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		return s, s, nil
	case StorageSQLite:
		s, err := session.OpenSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		return s, s, nil
	case StorageRedis:
		if b.redis == nil {
			return nil, nil, ErrRedisRequired
		}
		return session.NewRedisStore(b.redis, cfg.RedisPrefix, cfg.RedisTTL, cfg.SlidingTTL), nil, nil
	default:
		return session.NewMemoryStore(), nil, nil
	}
}
