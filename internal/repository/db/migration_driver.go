package db

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
)

// MigrationDriver builds a golang-migrate driver / Construit un driver golang-migrate
type MigrationDriver struct {
	// Name is the driver name registered with migrate / Nom du driver enregistré auprès de migrate
	Name string
	// SourcePath is the directory holding the .sql files / Répertoire contenant les fichiers .sql
	SourcePath string

	create func(*sql.DB) (database.Driver, error)
}

// CreateDriver wraps the connection for migrations / Enveloppe la connexion pour les migrations
func (d MigrationDriver) CreateDriver(db *sql.DB) (database.Driver, error) {
	return d.create(db)
}

// migrationDrivers maps database types to their driver / Associe les types de BD à leur driver
var migrationDrivers = map[DatabaseType]MigrationDriver{
	SQLite: {
		Name:       "sqlite3",
		SourcePath: "migrations/sqlite",
		create: func(db *sql.DB) (database.Driver, error) {
			return sqlite.WithInstance(db, &sqlite.Config{})
		},
	},
	MySQL: {
		Name:       "mysql",
		SourcePath: "migrations/mysql",
		create: func(db *sql.DB) (database.Driver, error) {
			return mysql.WithInstance(db, &mysql.Config{})
		},
	},
	PostgreSQL: {
		Name:       "postgres",
		SourcePath: "migrations/postgres",
		create: func(db *sql.DB) (database.Driver, error) {
			return postgres.WithInstance(db, &postgres.Config{})
		},
	},
}

// MigrationDriverFor retrieves the driver for a database type / Récupère le driver pour un type de BD
func MigrationDriverFor(dbType DatabaseType) (MigrationDriver, error) {
	driver, exists := migrationDrivers[dbType]
	if !exists {
		return MigrationDriver{}, fmt.Errorf("unsupported database type for migrations: %s", dbType)
	}
	return driver, nil
}
