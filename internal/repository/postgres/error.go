package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/net-idea/huette9/internal/repository/db"
)

var (
	ErrDup      = db.ErrDuplicateToken // Duplicate unique key, shared identity across backends / Clé unique dupliquée, identité partagée entre backends
	ErrNoRecord = db.ErrNoRecord       // Re-export from db package
)

// handleError translates PostgreSQL errors to typed errors / Traduit les erreurs PostgreSQL en erreurs typées
func handleError(err error) error {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoRecord
		}
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return ErrDup
			}
		}
	}
	return err
}
