package db

import (
	"context"
	"database/sql"
)

// WithTx runs fn inside a transaction / Exécute fn dans une transaction
// The transaction commits when fn returns nil and rolls back otherwise.
func WithTx(ctx context.Context, d *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
