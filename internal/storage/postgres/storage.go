package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/mcoot/realmgate/internal/model"
	"github.com/mcoot/realmgate/internal/storage"
)

// Every statement below takes request-derived values only as $n parameters.
const (
	accountExistsSQL = `SELECT EXISTS (SELECT 1 FROM account WHERE lower(username) = lower($1) OR lower(email) = lower($2))`

	insertAccountSQL = `INSERT INTO account (username, sha_pass_hash, email, last_ip, expansion)
		VALUES ($1, $2, $3, $4, $5)`

	insertSecurityEventSQL = `INSERT INTO security_events (occurred_at, client_ip, event_type, detail)
		VALUES ($1, $2, $3, $4)`
)

// pool is the subset of pgxpool.Pool used here, satisfied by pgxmock in tests
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Storage is the PostgreSQL account repository and security event sink
type Storage struct {
	pool pool
}

// Open creates a connection pool and verifies it with a ping
func Open(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("target", cfg.Redacted()).Wrap(err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("target", cfg.Redacted()).Wrap(err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("target", cfg.Redacted()).Wrap(err)
	}
	return p, nil
}

// New creates a Storage over an open pool
func New(p pool) *Storage {
	return &Storage{pool: p}
}

// Ensure Storage implements the interfaces
var (
	_ storage.AccountStore = (*Storage)(nil)
	_ storage.EventStore   = (*Storage)(nil)
)

// AccountExists reports whether any account has the username or the email
func (s *Storage) AccountExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, accountExistsSQL, username, email).Scan(&exists); err != nil {
		return false, oops.Code("ACCOUNT_LOOKUP_FAILED").
			With("operation", "check account exists").
			With("username", username).
			Wrap(err)
	}
	return exists, nil
}

// InsertAccount stores a new account row
// Returns an error matching model.ErrAccountExists on a unique violation
func (s *Storage) InsertAccount(ctx context.Context, account *model.Account) error {
	_, err := s.pool.Exec(ctx, insertAccountSQL,
		account.Username,
		account.CredentialHash,
		account.Email,
		account.RegistrationIP,
		int(account.Expansion),
	)
	if err != nil {
		return mapInsertError(err, account.Username)
	}
	return nil
}

// AppendSecurityEvent inserts an audit row
func (s *Storage) AppendSecurityEvent(ctx context.Context, event model.SecurityEvent) error {
	_, err := s.pool.Exec(ctx, insertSecurityEventSQL,
		event.Time,
		event.ClientIP,
		string(event.Type),
		event.Detail,
	)
	if err != nil {
		return oops.Code("SECURITY_EVENT_INSERT_FAILED").
			With("event_type", string(event.Type)).
			Wrap(err)
	}
	return nil
}
