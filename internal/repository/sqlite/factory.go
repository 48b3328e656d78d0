package sqlite

import (
	"database/sql"

	"github.com/net-idea/huette9/internal/ports"
)

// Factory implements DatabaseFactory for SQLite / Implémente DatabaseFactory pour SQLite
// The compile-time check is in adapter.go to avoid import cycles
// La vérification à la compilation est dans adapter.go pour éviter les cycles d'imports
type Factory struct{}

// NewBookingRepository creates booking repository / Crée le repository de réservations
func (f *Factory) NewBookingRepository(db *sql.DB) ports.BookingRepository {
	return NewBookingRepository(db)
}

// NewContactRepository creates contact repository / Crée le repository de contact
func (f *Factory) NewContactRepository(db *sql.DB) ports.ContactRepository {
	return NewContactRepository(db)
}
