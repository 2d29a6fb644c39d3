package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by stores that never open their
// own transactions. Both *sql.DB and *sql.Tx satisfy it, so such stores can
// run standalone or inside a caller-managed transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
