package sqlite

import (
	"context"
	"database/sql"

	"github.com/net-idea/huette9/internal/domain"
	"github.com/net-idea/huette9/internal/ports"
	"github.com/net-idea/huette9/internal/repository/db"
)

var _ ports.ContactRepository = (*contactRepository)(nil)

// contactRepository implements ContactRepository for SQLite / Implémente ContactRepository pour SQLite
type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates contact repository / Crée le repository de contact
func NewContactRepository(db *sql.DB) ports.ContactRepository {
	return &contactRepository{db: db}
}

// Create inserts new contact message in database / Insère un nouveau message de contact dans la BD
// Meta and message share one transaction, mirroring the booking insert.
func (r *contactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		metaID, err := insertMeta(ctx, tx, msg.Meta)
		if err != nil {
			return err
		}

		query := `INSERT INTO form_contact
			(name, email, phone, subject, message, consent, send_copy, created_at, meta_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		result, err := tx.ExecContext(ctx, query,
			msg.Name,
			msg.Email,
			msg.Phone,
			msg.Subject,
			msg.Message,
			msg.Consent,
			msg.Copy,
			msg.CreatedAt,
			metaID,
		)
		if err != nil {
			return handleError(err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return handleError(err)
		}

		msg.ID = id
		return nil
	})
}

// List retrieves paginated contact messages / Récupère les messages de contact paginés
func (r *contactRepository) List(ctx context.Context, offset, limit int) ([]*domain.ContactMessage, int, error) {
	var totalCount int
	countQuery := `SELECT COUNT(*) FROM form_contact`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&totalCount); err != nil {
		return nil, 0, handleError(err)
	}

	query := `
		SELECT id, name, email, phone, subject, message, consent, send_copy, created_at
		FROM form_contact
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, handleError(err)
	}
	defer rows.Close()

	var messages []*domain.ContactMessage
	for rows.Next() {
		msg := &domain.ContactMessage{}
		if err := rows.Scan(
			&msg.ID,
			&msg.Name,
			&msg.Email,
			&msg.Phone,
			&msg.Subject,
			&msg.Message,
			&msg.Consent,
			&msg.Copy,
			&msg.CreatedAt,
		); err != nil {
			return nil, 0, handleError(err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, handleError(err)
	}

	return messages, totalCount, nil
}
