package ports

import (
	"context"
	"database/sql"
)

// DBTX is the query surface the repositories need / Surface de requêtage dont les repositories ont besoin
//
// Both *sql.DB and *sql.Tx satisfy it, so a repository can run inside a
// transaction without knowing it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
