// Package ratelimit counts attempts per identifier inside a fixed window.
//
// Counters live in the visitor's session, so a limit only bounds repeated
// attempts from one browser session. Throttling a network address across
// sessions needs a shared store and is handled separately by the optional
// per-IP throttle middleware.
package ratelimit

import (
	"time"

	"github.com/mcoot/realmgate/internal/dependencies/clock"
	"github.com/mcoot/realmgate/internal/model"
)

const keyPrefix = "rate_limit_"

// Config holds limiter settings
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// DefaultConfig allows 5 attempts per 5 minutes
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		Window:      300 * time.Second,
	}
}

// counter is the per-identifier state kept in the session
type counter struct {
	Attempts    int       `json:"attempts"`
	WindowStart time.Time `json:"first_attempt"`
}

// Limiter decides whether another attempt is allowed
type Limiter struct {
	clock       clock.Clock
	maxAttempts int
	window      time.Duration
}

// New creates a new Limiter
func New(clock clock.Clock, cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	return &Limiter{
		clock:       clock,
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window,
	}
}

// Allow records an attempt for identifier and reports whether it is permitted.
// Once the limit is reached further attempts are rejected without being counted,
// until the window has fully elapsed.
func (l *Limiter) Allow(sess *model.Session, identifier string) bool {
	key := keyPrefix + identifier
	now := l.clock.Now()

	var c counter
	found, err := sess.Get(key, &c)
	if err != nil || !found || now.Sub(c.WindowStart) > l.window {
		l.store(sess, key, counter{Attempts: 1, WindowStart: now})
		return true
	}

	if c.Attempts >= l.maxAttempts {
		return false
	}

	c.Attempts++
	l.store(sess, key, c)
	return true
}

// Attempts returns the current count for identifier, 0 if none recorded
func (l *Limiter) Attempts(sess *model.Session, identifier string) int {
	var c counter
	if found, err := sess.Get(keyPrefix+identifier, &c); err != nil || !found {
		return 0
	}
	return c.Attempts
}

func (l *Limiter) store(sess *model.Session, key string, c counter) {
	// counter always marshals
	_ = sess.Set(key, c)
}
