package mysql

import (
	"context"
	"database/sql"

	"github.com/net-idea/huette9/internal/domain"
	"github.com/net-idea/huette9/internal/ports"
)

// insertMeta stores submission metadata and returns its ID / Stocke les métadonnées de soumission et retourne son ID
// Returns a NULL-able id so callers can reference it from the form tables.
func insertMeta(ctx context.Context, db ports.DBTX, meta *domain.SubmissionMeta) (sql.NullInt64, error) {
	if meta == nil {
		return sql.NullInt64{}, nil
	}

	query := `INSERT INTO form_submission_meta (ip_hash, user_agent, host, time) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, meta.IPHash, meta.UserAgent, meta.Host, meta.Time)
	if err != nil {
		return sql.NullInt64{}, handleError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return sql.NullInt64{}, handleError(err)
	}

	meta.ID = id
	return sql.NullInt64{Int64: id, Valid: true}, nil
}
