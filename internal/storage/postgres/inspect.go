package postgres

import (
	"context"

	"github.com/samber/oops"
)

// Column describes one column of the account table
type Column struct {
	Name     string
	DataType string
	Nullable bool
	Default  *string
}

// TableReport summarises the account table for operators
type TableReport struct {
	ServerVersion string
	TableExists   bool
	Columns       []Column
	AccountCount  int64
}

const (
	tableExistsSQL = `SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)`

	columnsSQL = `SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position`

	countAccountsSQL = `SELECT COUNT(*) FROM account`
)

// Ping verifies the connection
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return oops.Code("DB_PING_FAILED").Wrap(err)
	}
	return nil
}

// Inspect reports the server version and the account table's structure
func (s *Storage) Inspect(ctx context.Context) (*TableReport, error) {
	report := &TableReport{}

	if err := s.pool.QueryRow(ctx, `SELECT version()`).Scan(&report.ServerVersion); err != nil {
		return nil, oops.Code("DB_INSPECT_FAILED").With("operation", "server version").Wrap(err)
	}

	if err := s.pool.QueryRow(ctx, tableExistsSQL, "account").Scan(&report.TableExists); err != nil {
		return nil, oops.Code("DB_INSPECT_FAILED").With("operation", "table exists").Wrap(err)
	}
	if !report.TableExists {
		return report, nil
	}

	rows, err := s.pool.Query(ctx, columnsSQL, "account")
	if err != nil {
		return nil, oops.Code("DB_INSPECT_FAILED").With("operation", "list columns").Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			col      Column
			nullable string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.Default); err != nil {
			return nil, oops.Code("DB_INSPECT_FAILED").With("operation", "scan column").Wrap(err)
		}
		col.Nullable = nullable == "YES"
		report.Columns = append(report.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("DB_INSPECT_FAILED").With("operation", "list columns").Wrap(err)
	}

	if err := s.pool.QueryRow(ctx, countAccountsSQL).Scan(&report.AccountCount); err != nil {
		return nil, oops.Code("DB_INSPECT_FAILED").With("operation", "count accounts").Wrap(err)
	}
	return report, nil
}
