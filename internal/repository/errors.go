package repository

import (
	"github.com/net-idea/huette9/internal/repository/db"
	"github.com/net-idea/huette9/internal/repository/sqlite"
)

// Re-export common errors for backward compatibility and convenience
var (
	// Common database errors from db package
	ErrNoRecord            = db.ErrNoRecord
	ErrDuplicateToken      = db.ErrDuplicateToken
	ErrForeignKeyViolation = db.ErrForeignKey

	// SQLite-specific errors from sqlite package
	ErrDup    = sqlite.ErrDup
	ErrBusy   = sqlite.ErrBusy
	ErrLocked = sqlite.ErrLocked
)
