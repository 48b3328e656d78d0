package db

import (
	"database/sql"
	"fmt"
	"log"
)

// DatabaseConfig holds database connection config / Contient la config de connexion BD
type DatabaseConfig struct {
	Type         DatabaseType
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// DatabaseInitializer initializes database connections / Initialise les connexions BD
type DatabaseInitializer interface {
	Initialize(config DatabaseConfig) (*sql.DB, error)
	ConfigureConnection(db *sql.DB, config DatabaseConfig) error
	Type() DatabaseType
}

// initializers maps database types to their initializer / Associe les types de BD à leur initialiseur
var initializers = map[DatabaseType]func() DatabaseInitializer{
	SQLite:     func() DatabaseInitializer { return &sqliteInitializer{} },
	MySQL:      func() DatabaseInitializer { return &mysqlInitializer{} },
	PostgreSQL: func() DatabaseInitializer { return &postgresInitializer{} },
}

// NewDatabaseInitializer creates initializer for database type / Crée l'initialiseur pour le type de BD
// Unknown types fall back to SQLite, the deployment default.
func NewDatabaseInitializer(dbType DatabaseType) DatabaseInitializer {
	if factory, ok := initializers[dbType]; ok {
		return factory()
	}
	return &sqliteInitializer{}
}

// baseInitializer provides common functionality / Fournit les fonctionnalités communes
type baseInitializer struct{}

func (b *baseInitializer) setConnectionPool(db *sql.DB, config DatabaseConfig) {
	maxOpen := config.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 25
	}
	maxIdle := config.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
}

func (b *baseInitializer) open(driver string, i DatabaseInitializer, config DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}

	if err := i.ConfigureConnection(db, config); err != nil {
		db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}

	log.Printf("%s database connected successfully", i.Type())
	return db, nil
}

// SQLite initializer / Initialiseur SQLite
type sqliteInitializer struct {
	baseInitializer
}

func (i *sqliteInitializer) Initialize(config DatabaseConfig) (*sql.DB, error) {
	return i.open("sqlite", i, config)
}

func (i *sqliteInitializer) ConfigureConnection(db *sql.DB, config DatabaseConfig) error {
	i.setConnectionPool(db, config)

	// PRAGMAs for concurrent form submissions on a single file database
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA trusted_schema=OFF;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("Warning: failed to execute pragma (%s): %v", pragma, err)
		}
	}

	return nil
}

func (i *sqliteInitializer) Type() DatabaseType {
	return SQLite
}

// MySQL initializer / Initialiseur MySQL
type mysqlInitializer struct {
	baseInitializer
}

func (i *mysqlInitializer) Initialize(config DatabaseConfig) (*sql.DB, error) {
	return i.open("mysql", i, config)
}

func (i *mysqlInitializer) ConfigureConnection(db *sql.DB, config DatabaseConfig) error {
	i.setConnectionPool(db, config)

	_, err := db.Exec("SET SESSION sql_mode='TRADITIONAL,NO_AUTO_VALUE_ON_ZERO'")
	if err != nil {
		log.Printf("Warning: failed to set MySQL sql_mode: %v", err)
	}

	return nil
}

func (i *mysqlInitializer) Type() DatabaseType {
	return MySQL
}

// PostgreSQL initializer / Initialiseur PostgreSQL
type postgresInitializer struct {
	baseInitializer
}

func (i *postgresInitializer) Initialize(config DatabaseConfig) (*sql.DB, error) {
	return i.open("postgres", i, config)
}

func (i *postgresInitializer) ConfigureConnection(db *sql.DB, config DatabaseConfig) error {
	i.setConnectionPool(db, config)

	_, err := db.Exec("SET TIME ZONE 'UTC'")
	if err != nil {
		log.Printf("Warning: failed to set PostgreSQL timezone: %v", err)
	}

	return nil
}

func (i *postgresInitializer) Type() DatabaseType {
	return PostgreSQL
}
