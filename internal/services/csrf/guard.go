// Package csrf issues and checks the per-session anti-forgery token embedded
// in the registration form.
package csrf

import (
	"crypto/subtle"
	"time"

	"github.com/mcoot/realmgate/internal/dependencies/clock"
	"github.com/mcoot/realmgate/internal/dependencies/random"
	"github.com/mcoot/realmgate/internal/model"
)

const (
	sessionKey = "csrf_token"

	// TokenBytes is the amount of entropy in a token; the encoded form is twice as long
	TokenBytes = 32

	// DefaultLifetime is how long an issued token stays valid
	DefaultLifetime = time.Hour
)

type storedToken struct {
	Value    string    `json:"value"`
	IssuedAt time.Time `json:"issued_at"`
}

// Guard manages CSRF tokens stored in sessions
type Guard struct {
	clock    clock.Clock
	random   random.Random
	lifetime time.Duration
}

// New creates a new Guard. A non-positive lifetime uses DefaultLifetime.
func New(clock clock.Clock, random random.Random, lifetime time.Duration) *Guard {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Guard{
		clock:    clock,
		random:   random,
		lifetime: lifetime,
	}
}

// Issue returns the session's current token, generating one if none exists.
// Repeated calls return the same value until it expires.
func (g *Guard) Issue(sess *model.Session) (string, error) {
	var tok storedToken
	if found, err := sess.Get(sessionKey, &tok); err == nil && found && tok.Value != "" {
		if g.clock.Now().Sub(tok.IssuedAt) < g.lifetime {
			return tok.Value, nil
		}
	}

	value, err := g.random.Token(TokenBytes)
	if err != nil {
		return "", err
	}
	if err := sess.Set(sessionKey, storedToken{Value: value, IssuedAt: g.clock.Now()}); err != nil {
		return "", err
	}
	return value, nil
}

// Validate reports whether submitted matches the session's token.
// An expired token is removed and rejected.
func (g *Guard) Validate(sess *model.Session, submitted string) bool {
	if submitted == "" {
		return false
	}

	var tok storedToken
	found, err := sess.Get(sessionKey, &tok)
	if err != nil || !found || tok.Value == "" {
		return false
	}

	if g.clock.Now().Sub(tok.IssuedAt) >= g.lifetime {
		sess.Delete(sessionKey)
		return false
	}

	return subtle.ConstantTimeCompare([]byte(tok.Value), []byte(submitted)) == 1
}
