package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultKey is the durable storage key used when [Config.Key] is empty.
const DefaultKey = "token"

// Config configures a [Session].
type Config struct {
	// Key is the durable storage key for the token.
	Key string
	// ExpiresAt reports the expiry of a token, when known. Used by Restore only.
	ExpiresAt func(token string) (time.Time, bool)
	// Leeway is subtracted from "now" when checking restored tokens.
	Leeway time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Change describes a token transition. Listeners only see real transitions.
type Change struct {
	Previous string
	Current  string
}

// Authenticated reports whether the transition ended with a token held.
func (c Change) Authenticated() bool {
	return c.Current != ""
}

// Session owns the current bearer token and mirrors it to a [Store].
//
// Session is safe for concurrent use. Writes are serialised so the durable
// copy always matches the last write.
type Session struct {
	store  Store
	key    string
	cfg    Config
	writes sync.Mutex
	// notifying is taken before writes is released and held until listeners
	// return, so transitions are delivered in write order.
	notifying sync.Mutex

	mu        sync.RWMutex
	token     string
	listeners map[uint64]func(Change)
	nextID    uint64
}

// New creates a logged-out [Session] persisting to store.
func New(store Store, cfg Config) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Session{
		store:     store,
		key:       cfg.Key,
		cfg:       cfg,
		listeners: make(map[uint64]func(Change)),
	}
}

// Token returns the current token, "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Key returns the durable storage key.
func (s *Session) Key() string {
	return s.key
}

// SetToken replaces the token. A non-empty token is written to the store; an
// empty one removes the durable copy. The in-memory token is updated even when
// the store fails, and the store error is returned.
func (s *Session) SetToken(ctx context.Context, token string) error {
	s.writes.Lock()
	prev := s.swap(token)

	var err error
	if token != "" {
		err = s.store.Set(ctx, s.key, token)
	} else {
		err = s.store.Delete(ctx, s.key)
	}
	s.release(prev, token)
	return err
}

// Clear logs out: the token becomes "" and the durable copy is removed.
// Clear is idempotent.
func (s *Session) Clear(ctx context.Context) error {
	return s.SetToken(ctx, "")
}

// Restore loads the durable token into memory. It returns "" with a nil error
// when nothing is stored, and "" with [ErrTokenExpired] when the stored token
// is already past its expiry, in which case the durable copy is deleted.
func (s *Session) Restore(ctx context.Context) (string, error) {
	s.writes.Lock()

	token, err := s.store.Get(ctx, s.key)
	if err != nil {
		s.writes.Unlock()
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	if s.cfg.ExpiresAt != nil {
		if exp, ok := s.cfg.ExpiresAt(token); ok && !s.cfg.Now().Add(-s.cfg.Leeway).Before(exp) {
			delErr := s.store.Delete(ctx, s.key)
			s.writes.Unlock()
			return "", errors.Join(ErrTokenExpired, delErr)
		}
	}

	prev := s.swap(token)
	s.release(prev, token)
	return token, nil
}

// release ends a write and delivers its transition, if any, before a later
// write can deliver its own. Called with writes held.
func (s *Session) release(prev, token string) {
	if prev == token {
		s.writes.Unlock()
		return
	}
	s.notifying.Lock()
	s.writes.Unlock()
	defer s.notifying.Unlock()
	s.notify(Change{Previous: prev, Current: token})
}

// Subscribe registers fn to be called after every token transition. The
// returned function removes the listener. Listeners run one transition at a
// time in write order and must not write to the Session themselves.
func (s *Session) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) swap(token string) string {
	s.mu.Lock()
	prev := s.token
	s.token = token
	s.mu.Unlock()
	return prev
}

func (s *Session) notify(c Change) {
	s.mu.RLock()
	fns := make([]func(Change), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
