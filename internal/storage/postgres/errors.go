package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/mcoot/realmgate/internal/model"
)

// mapInsertError converts a driver error from an account insert into a
// domain error. A unique violation is an expected outcome, not a failure.
func mapInsertError(err error, username string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("ACCOUNT_EXISTS").
			With("constraint", pgErr.ConstraintName).
			With("username", username).
			Wrap(model.ErrAccountExists)
	}
	return oops.Code("ACCOUNT_INSERT_FAILED").
		With("operation", "insert account").
		With("username", username).
		Wrap(err)
}
