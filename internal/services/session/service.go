package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/realmgate/internal/dependencies/clock"
	"github.com/mcoot/realmgate/internal/dependencies/random"
	"github.com/mcoot/realmgate/internal/model"
	"github.com/mcoot/realmgate/internal/storage"
)

const (
	// idBytes is the amount of randomness in a session identifier (256 bits)
	idBytes = 32

	// DefaultRotateAfter is the session age after which the identifier is regenerated
	DefaultRotateAfter = 30 * time.Minute
)

// Config holds configuration for the session service
type Config struct {
	RotateAfter time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		RotateAfter: DefaultRotateAfter,
	}
}

// Service loads, rotates and persists visitor sessions
type Service struct {
	store  storage.SessionStore
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	rotateAfter time.Duration
}

// New creates a new session Service
func New(store storage.SessionStore, clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.RotateAfter == 0 {
		cfg.RotateAfter = DefaultConfig().RotateAfter
	}
	return &Service{
		store:       store,
		clock:       clock,
		random:      random,
		logger:      logger,
		rotateAfter: cfg.RotateAfter,
	}
}

// Load returns the session for id, creating a fresh one if id is empty or unknown.
// A session older than the rotation threshold gets a new identifier; its values
// are kept and its creation time is reset.
func (s *Service) Load(ctx context.Context, id model.SessionID) (*model.Session, error) {
	now := s.clock.Now()

	if id == "" {
		return s.create(now)
	}

	sess, err := s.store.GetSession(ctx, id)
	if errors.Is(err, model.ErrSessionNotFound) {
		if errors.Is(err, model.ErrSessionCorrupt) {
			s.logger.Warn("discarding unreadable session", slog.String("error", err.Error()))
		}
		return s.create(now)
	}
	if err != nil {
		return nil, err
	}

	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}

	if now.Sub(sess.CreatedAt) > s.rotateAfter {
		if err := s.rotate(ctx, sess, now); err != nil {
			return nil, err
		}
	}

	return sess, nil
}

// Save persists the session
func (s *Service) Save(ctx context.Context, sess *model.Session) error {
	return s.store.SaveSession(ctx, sess)
}

// Destroy removes the session from the store
func (s *Service) Destroy(ctx context.Context, sess *model.Session) error {
	return s.store.DeleteSession(ctx, sess.ID)
}

func (s *Service) create(now time.Time) (*model.Session, error) {
	id, err := s.newID()
	if err != nil {
		return nil, err
	}
	return model.NewSession(id, now), nil
}

func (s *Service) rotate(ctx context.Context, sess *model.Session, now time.Time) error {
	oldID := sess.ID
	newID, err := s.newID()
	if err != nil {
		return err
	}

	sess.ID = newID
	sess.CreatedAt = now

	if err := s.store.DeleteSession(ctx, oldID); err != nil {
		// The old id simply lingers until its TTL; the visitor already moved on.
		s.logger.Warn("failed to delete rotated session", slog.String("error", err.Error()))
	}
	s.logger.Debug("session identifier rotated")
	return nil
}

func (s *Service) newID() (model.SessionID, error) {
	token, err := s.random.Token(idBytes)
	if err != nil {
		return "", err
	}
	return model.SessionID(token), nil
}
