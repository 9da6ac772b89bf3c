package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/realmgate/internal/model"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, oopsErr.Code())
}

func TestAccountExists(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      bool
		wantErr   bool
	}{
		{
			name: "existing username or email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(accountExistsSQL)).
					WithArgs("Player1", "p1@example.com").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "no match",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(accountExistsSQL)).
					WithArgs("Player1", "p1@example.com").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			},
			want: false,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(accountExistsSQL)).
					WithArgs("Player1", "p1@example.com").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			got, err := New(mock).AccountExists(context.Background(), "Player1", "p1@example.com")

			if tt.wantErr {
				require.Error(t, err)
				assertCode(t, err, "ACCOUNT_LOOKUP_FAILED")
				assert.Contains(t, err.Error(), "connection refused")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestInsertAccount(t *testing.T) {
	account := &model.Account{
		Username:       "Player1",
		CredentialHash: "0123456789abcdef0123456789abcdef01234567",
		Email:          "p1@example.com",
		RegistrationIP: "203.0.113.7",
		Expansion:      3,
	}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		checkErr  func(t *testing.T, err error)
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta(insertAccountSQL)).
					WithArgs("Player1", account.CredentialHash, "p1@example.com", "203.0.113.7", 3).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
			checkErr: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name: "unique violation maps to account exists",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta(insertAccountSQL)).
					WithArgs("Player1", account.CredentialHash, "p1@example.com", "203.0.113.7", 3).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "account_username_key"})
			},
			checkErr: func(t *testing.T, err error) {
				require.ErrorIs(t, err, model.ErrAccountExists)
				assertCode(t, err, "ACCOUNT_EXISTS")
			},
		},
		{
			name: "other database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta(insertAccountSQL)).
					WithArgs("Player1", account.CredentialHash, "p1@example.com", "203.0.113.7", 3).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.NotNullViolation})
			},
			checkErr: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.NotErrorIs(t, err, model.ErrAccountExists)
				assertCode(t, err, "ACCOUNT_INSERT_FAILED")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			err := New(mock).InsertAccount(context.Background(), account)

			tt.checkErr(t, err)
			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestAppendSecurityEvent(t *testing.T) {
	mock := newMock(t)
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(insertSecurityEventSQL)).
		WithArgs(at, "203.0.113.7", "CAPTCHA_FAILED", "User: Player1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := New(mock).AppendSecurityEvent(context.Background(), model.SecurityEvent{
		Time:     at,
		ClientIP: "203.0.113.7",
		Type:     model.EventCaptchaFailed,
		Detail:   "User: Player1",
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendSecurityEventError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(insertSecurityEventSQL)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))

	err := New(mock).AppendSecurityEvent(context.Background(), model.SecurityEvent{Type: model.EventRegistered})

	require.Error(t, err)
	assertCode(t, err, "SECURITY_EVENT_INSERT_FAILED")
}

func TestInspectMissingTable(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT version()`)).
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow("PostgreSQL 16.2"))
	mock.ExpectQuery(regexp.QuoteMeta(tableExistsSQL)).
		WithArgs("account").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	report, err := New(mock).Inspect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "PostgreSQL 16.2", report.ServerVersion)
	assert.False(t, report.TableExists)
	assert.Empty(t, report.Columns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectExistingTable(t *testing.T) {
	mock := newMock(t)
	serial := "nextval('account_id_seq'::regclass)"
	empty := "''::character varying"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT version()`)).
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow("PostgreSQL 16.2"))
	mock.ExpectQuery(regexp.QuoteMeta(tableExistsSQL)).
		WithArgs("account").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(columnsSQL)).
		WithArgs("account").
		WillReturnRows(pgxmock.NewRows([]string{"column_name", "data_type", "is_nullable", "column_default"}).
			AddRow("id", "integer", "NO", &serial).
			AddRow("email", "character varying", "YES", &empty))
	mock.ExpectQuery(regexp.QuoteMeta(countAccountsSQL)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))

	report, err := New(mock).Inspect(context.Background())

	require.NoError(t, err)
	assert.True(t, report.TableExists)
	require.Len(t, report.Columns, 2)
	assert.Equal(t, "id", report.Columns[0].Name)
	assert.False(t, report.Columns[0].Nullable)
	assert.True(t, report.Columns[1].Nullable)
	assert.Equal(t, int64(12), report.AccountCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectVersionError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT version()`)).
		WillReturnError(errors.New("connection reset"))

	_, err := New(mock).Inspect(context.Background())

	require.Error(t, err)
	assertCode(t, err, "DB_INSPECT_FAILED")
}
