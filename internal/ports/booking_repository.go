package ports

import (
	"context"
	"time"

	"github.com/net-idea/huette9/internal/domain"
)

// BookingRepository persists booking requests / Persiste les demandes de réservation
type BookingRepository interface {
	// Create inserts a new booking and assigns its ID / Insère une réservation et assigne son ID
	// A confirmation token collision surfaces as a duplicate-key error.
	Create(ctx context.Context, booking *domain.BookingRequest) error

	// GetByToken retrieves a booking by exact confirmation token / Récupère la réservation par token exact
	GetByToken(ctx context.Context, token string) (*domain.BookingRequest, error)

	// ConfirmIfPending atomically flips is_confirmed false→true for the token.
	// The check and the write are one store operation; two concurrent calls for
	// the same token yield exactly one ConfirmStatusConfirmed.
	ConfirmIfPending(ctx context.Context, token string, at time.Time) (domain.ConfirmStatus, error)

	// List retrieves bookings, newest first / Récupère les réservations, les plus récentes d'abord
	List(ctx context.Context, offset, limit int) ([]*domain.BookingRequest, int, error)
}

// ContactRepository persists contact messages / Persiste les messages de contact
type ContactRepository interface {
	// Create inserts a new contact message and assigns its ID / Insère un message et assigne son ID
	Create(ctx context.Context, msg *domain.ContactMessage) error

	// List retrieves messages, newest first / Récupère les messages, les plus récents d'abord
	List(ctx context.Context, offset, limit int) ([]*domain.ContactMessage, int, error)
}
