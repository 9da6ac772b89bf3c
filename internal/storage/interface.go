package storage

import (
	"context"
	"time"

	"github.com/mcoot/realmgate/internal/model"
)

// SessionStore persists visitor sessions
type SessionStore interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
}

// AccountStore persists game accounts
//
// AccountExists is advisory only. InsertAccount must return
// model.ErrAccountExists when the store's own uniqueness guarantee rejects
// the row, which is the authoritative race-free check.
type AccountStore interface {
	AccountExists(ctx context.Context, username, email string) (bool, error)
	InsertAccount(ctx context.Context, account *model.Account) error
}

// EventStore appends security events
type EventStore interface {
	AppendSecurityEvent(ctx context.Context, event model.SecurityEvent) error
}

// DefaultSessionTTL bounds how long an idle session is kept by stores that expire data
const DefaultSessionTTL = 24 * time.Hour
