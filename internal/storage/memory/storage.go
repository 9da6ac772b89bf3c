package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/realmgate/internal/dependencies/clock"
	"github.com/mcoot/realmgate/internal/model"
	"github.com/mcoot/realmgate/internal/storage"
)

// sweepEvery bounds how often SaveSession scans for idle sessions
const sweepEvery = time.Minute

// Storage is an in-memory implementation of the session, account and event stores
type Storage struct {
	mu sync.RWMutex

	clock      clock.Clock
	sessionTTL time.Duration
	lastSweep  time.Time

	sessions      map[model.SessionID]sessionEntry
	accounts      []*model.Account
	usernameIndex map[string]int
	emailIndex    map[string]int
	events        []model.SecurityEvent
}

type sessionEntry struct {
	session  *model.Session
	lastSeen time.Time
}

// New creates a new in-memory storage instance on the system clock
func New() *Storage {
	return NewWithClock(clock.New(), storage.DefaultSessionTTL)
}

// NewWithClock creates a storage whose sessions expire after sessionTTL without a save.
// A non-positive sessionTTL uses storage.DefaultSessionTTL.
func NewWithClock(clk clock.Clock, sessionTTL time.Duration) *Storage {
	if sessionTTL <= 0 {
		sessionTTL = storage.DefaultSessionTTL
	}
	return &Storage{
		clock:         clk,
		sessionTTL:    sessionTTL,
		lastSweep:     clk.Now(),
		sessions:      make(map[model.SessionID]sessionEntry),
		usernameIndex: make(map[string]int),
		emailIndex:    make(map[string]int),
	}
}

// Ensure Storage implements the interfaces
var (
	_ storage.SessionStore = (*Storage)(nil)
	_ storage.AccountStore = (*Storage)(nil)
	_ storage.EventStore   = (*Storage)(nil)
)

// Session operations

// SaveSession stores the session and refreshes its idle deadline
func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if now.Sub(s.lastSweep) >= sweepEvery {
		s.sweepLocked(now)
	}
	s.sessions[session.ID] = sessionEntry{session: cloneSession(session), lastSeen: now}
	return nil
}

// GetSession returns a copy of the session; idle sessions are reported as not found
func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	if !ok || s.expired(entry, s.clock.Now()) {
		return nil, model.ErrSessionNotFound
	}
	return cloneSession(entry.session), nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Storage) expired(entry sessionEntry, now time.Time) bool {
	return now.Sub(entry.lastSeen) > s.sessionTTL
}

func (s *Storage) sweepLocked(now time.Time) {
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
		}
	}
	s.lastSweep = now
}

// Account operations
// Usernames and emails compare case-insensitively, like a citext/ci collation

func (s *Storage) AccountExists(ctx context.Context, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, byName := s.usernameIndex[strings.ToLower(username)]
	_, byEmail := s.emailIndex[strings.ToLower(email)]
	return byName || byEmail, nil
}

func (s *Storage) InsertAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nameKey := strings.ToLower(account.Username)
	emailKey := strings.ToLower(account.Email)
	if _, ok := s.usernameIndex[nameKey]; ok {
		return model.ErrAccountExists
	}
	if _, ok := s.emailIndex[emailKey]; ok {
		return model.ErrAccountExists
	}

	stored := *account
	s.accounts = append(s.accounts, &stored)
	s.usernameIndex[nameKey] = len(s.accounts) - 1
	s.emailIndex[emailKey] = len(s.accounts) - 1
	return nil
}

// Accounts returns a snapshot of all stored accounts in insertion order
func (s *Storage) Accounts() []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	return out
}

// Event operations

func (s *Storage) AppendSecurityEvent(ctx context.Context, event model.SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// SecurityEvents returns a snapshot of appended events
func (s *Storage) SecurityEvents() []model.SecurityEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SecurityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// cloneSession copies the value map so callers never share it with the store
func cloneSession(session *model.Session) *model.Session {
	clone := model.NewSession(session.ID, session.CreatedAt)
	for k, v := range session.Values {
		clone.Values[k] = append([]byte(nil), v...)
	}
	return clone
}
