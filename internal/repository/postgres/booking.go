package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/net-idea/huette9/internal/domain"
	"github.com/net-idea/huette9/internal/ports"
	"github.com/net-idea/huette9/internal/repository/db"
)

var _ ports.BookingRepository = (*bookingRepository)(nil)

// bookingRepository implements BookingRepository for PostgreSQL / Implémente BookingRepository pour PostgreSQL
// lib/pq has no LastInsertId, inserts use RETURNING id instead.
type bookingRepository struct {
	db *sql.DB
}

// NewBookingRepository creates booking repository / Crée le repository de réservations
func NewBookingRepository(db *sql.DB) ports.BookingRepository {
	return &bookingRepository{db: db}
}

// Create inserts new booking in database / Insère une nouvelle réservation dans la BD
// Meta and booking land in one transaction so a rejected booking insert, a
// token collision included, cannot leave an orphan metadata row behind.
func (r *bookingRepository) Create(ctx context.Context, booking *domain.BookingRequest) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		metaID, err := insertMeta(ctx, tx, booking.Meta)
		if err != nil {
			return err
		}

		query := `INSERT INTO form_booking
			(arrival_date, departure_date, number_of_persons, contact_name, contact_email,
			 contact_phone, notes, data_consent, confirmation_token, is_confirmed, created_at, meta_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10, $11)
			RETURNING id`
		err = tx.QueryRowContext(ctx, query,
			booking.ArrivalDate,
			booking.DepartureDate,
			booking.NumberOfPersons,
			booking.ContactName,
			booking.ContactEmail,
			booking.ContactPhone,
			booking.Notes,
			booking.DataConsent,
			booking.ConfirmationToken,
			booking.CreatedAt,
			metaID,
		).Scan(&booking.ID)
		if err != nil {
			return handleError(err)
		}

		return nil
	})
}

// GetByToken retrieves booking by confirmation token / Récupère la réservation par token de confirmation
func (r *bookingRepository) GetByToken(ctx context.Context, token string) (*domain.BookingRequest, error) {
	query := `SELECT id, arrival_date, departure_date, number_of_persons, contact_name,
	                 contact_email, contact_phone, notes, data_consent, confirmation_token,
	                 is_confirmed, confirmed_at, created_at
	          FROM form_booking WHERE confirmation_token = $1`

	booking := &domain.BookingRequest{}
	var confirmedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&booking.ID,
		&booking.ArrivalDate,
		&booking.DepartureDate,
		&booking.NumberOfPersons,
		&booking.ContactName,
		&booking.ContactEmail,
		&booking.ContactPhone,
		&booking.Notes,
		&booking.DataConsent,
		&booking.ConfirmationToken,
		&booking.IsConfirmed,
		&confirmedAt,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, handleError(err)
	}
	if confirmedAt.Valid {
		booking.ConfirmedAt = &confirmedAt.Time
	}
	return booking, nil
}

// ConfirmIfPending flips is_confirmed in a single conditional UPDATE.
// The WHERE clause carries the pending check, so two concurrent calls for the
// same token cannot both observe the pending→confirmed edge.
func (r *bookingRepository) ConfirmIfPending(ctx context.Context, token string, at time.Time) (domain.ConfirmStatus, error) {
	query := `UPDATE form_booking
		SET is_confirmed = TRUE, confirmed_at = $1
		WHERE confirmation_token = $2 AND is_confirmed = FALSE`
	result, err := r.db.ExecContext(ctx, query, at.UTC(), token)
	if err != nil {
		return domain.ConfirmStatusInvalid, handleError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.ConfirmStatusInvalid, handleError(err)
	}
	if affected == 1 {
		return domain.ConfirmStatusConfirmed, nil
	}

	var confirmed bool
	existsQuery := `SELECT is_confirmed FROM form_booking WHERE confirmation_token = $1`
	err = r.db.QueryRowContext(ctx, existsQuery, token).Scan(&confirmed)
	if err != nil {
		if handleError(err) == ErrNoRecord {
			return domain.ConfirmStatusInvalid, nil
		}
		return domain.ConfirmStatusInvalid, handleError(err)
	}
	return domain.ConfirmStatusAlreadyConfirmed, nil
}

// List retrieves paginated bookings / Récupère les réservations paginées
func (r *bookingRepository) List(ctx context.Context, offset, limit int) ([]*domain.BookingRequest, int, error) {
	var totalCount int
	countQuery := `SELECT COUNT(*) FROM form_booking`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&totalCount); err != nil {
		return nil, 0, handleError(err)
	}

	query := `
		SELECT id, arrival_date, departure_date, number_of_persons, contact_name,
		       contact_email, contact_phone, notes, data_consent, confirmation_token,
		       is_confirmed, confirmed_at, created_at
		FROM form_booking
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, handleError(err)
	}
	defer rows.Close()

	var bookings []*domain.BookingRequest
	for rows.Next() {
		booking := &domain.BookingRequest{}
		var confirmedAt sql.NullTime
		if err := rows.Scan(
			&booking.ID,
			&booking.ArrivalDate,
			&booking.DepartureDate,
			&booking.NumberOfPersons,
			&booking.ContactName,
			&booking.ContactEmail,
			&booking.ContactPhone,
			&booking.Notes,
			&booking.DataConsent,
			&booking.ConfirmationToken,
			&booking.IsConfirmed,
			&confirmedAt,
			&booking.CreatedAt,
		); err != nil {
			return nil, 0, handleError(err)
		}
		if confirmedAt.Valid {
			booking.ConfirmedAt = &confirmedAt.Time
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, handleError(err)
	}

	return bookings, totalCount, nil
}
