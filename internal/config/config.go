// Package config provides application configuration management using Viper.
// It supports loading configuration from YAML files and environment variables,
// with built-in validation for production and development environments.
// The package follows a hierarchical configuration structure with support for
// multiple database types (SQLite, MySQL, PostgreSQL), mail delivery, rate
// limiting, localization, and logging configurations.
package config

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config holds all application configuration / Contient toute la configuration de l'application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Environment string            `mapstructure:"environment"`
	Site        SiteConfig        `mapstructure:"site"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Backup      BackupConfig      `mapstructure:"backup"`
	Security    SecurityConfig    `mapstructure:"security"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
	SMTP        SMTPConfig        `mapstructure:"smtp"`
	Mail        MailConfig        `mapstructure:"mail"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds server configuration / Configuration serveur
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	BaseURL      string        `mapstructure:"base_url"` // Public origin used in confirmation links / Origine publique des liens de confirmation
}

// SiteConfig holds site identity and localization / Identité du site et localisation
type SiteConfig struct {
	Name             string   `mapstructure:"name"`
	DefaultLocale    string   `mapstructure:"default_locale"`
	SupportedLocales []string `mapstructure:"supported_locales"`
}

// DatabaseConfig holds database-specific configuration / Configuration de la base de données
type DatabaseConfig struct {
	Type           string `mapstructure:"type"`            // Database type: "sqlite", "mysql", or "postgres"
	DSN            string `mapstructure:"dsn"`             // Data Source Name for connecting to the database
	MigrationsPath string `mapstructure:"migrations_path"` // Path to migration files
	MaxOpenConns   int    `mapstructure:"max_open_conns"`  // Maximum number of open connections (default: 25)
	MaxIdleConns   int    `mapstructure:"max_idle_conns"`  // Maximum number of idle connections (default: 5)
}

// BackupConfig holds database backup configuration / Configuration des sauvegardes de la base de données
type BackupConfig struct {
	Enabled       bool          `mapstructure:"enabled"`        // Enable automatic backups / Active les sauvegardes automatiques
	Interval      time.Duration `mapstructure:"interval"`       // Backup interval (default: 24h) / Intervalle de sauvegarde
	Path          string        `mapstructure:"path"`           // Directory to store backups / Répertoire de stockage
	RetentionDays int           `mapstructure:"retention_days"` // Number of days to keep backups / Nombre de jours de rétention
}

// SecurityConfig holds security settings / Paramètres de sécurité
type SecurityConfig struct {
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	SecureCookies  bool     `mapstructure:"secure_cookies"` // Adds __Host- prefix and Secure flag to CSRF cookies / Ajoute le préfixe __Host- et le flag Secure
}

// RateLimiterConfig holds rate limiter configuration / Configuration limiteur de débit
// The submission section throttles form POSTs separately from general traffic.
type RateLimiterConfig struct {
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	Enabled         bool    `mapstructure:"enabled"`
	SubmissionRPS   float64 `mapstructure:"submission_rps"`
	SubmissionBurst int     `mapstructure:"submission_burst"`
}

// SMTPConfig holds SMTP server configuration / Configuration serveur SMTP
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// MailConfig holds notification addressing / Adressage des notifications
type MailConfig struct {
	OwnerName  string `mapstructure:"owner_name"`  // Display name on owner notifications / Nom affiché sur les notifications
	OwnerEmail string `mapstructure:"owner_email"` // Receives booking and contact notifications / Reçoit les notifications de réservation et de contact
	ReplyTo    string `mapstructure:"reply_to"`
}

// LoggingConfig holds logging configuration / Configuration logging
type LoggingConfig struct {
	Level         string            `mapstructure:"level"`
	Format        string            `mapstructure:"format"`
	LokiEnabled   bool              `mapstructure:"loki_enabled"`
	LokiURL       string            `mapstructure:"loki_url"`
	LokiLabels    map[string]string `mapstructure:"loki_labels"`
	LokiBatchSize int               `mapstructure:"loki_batch_size"`
}

// IsProduction checks if environment is production / Vérifie si l'environnement est production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsProd is alias for IsProduction / Alias pour IsProduction
func (c *Config) IsProd() bool {
	return c.IsProduction()
}

// IsDevelopment checks if environment is development / Vérifie si l'environnement est development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsDev is alias for IsDevelopment / Alias pour IsDevelopment
func (c *Config) IsDev() bool {
	return c.IsDevelopment()
}

// LoadConfig loads configuration from YAML and env vars / Charge la config depuis YAML et variables d'env
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("environment", "development")
	v.SetDefault("site.name", "Hütte9")
	v.SetDefault("site.default_locale", "de")
	v.SetDefault("site.supported_locales", []string{"de", "en"})
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data.db?_journal_mode=WAL&_busy_timeout=5000")
	v.SetDefault("database.migrations_path", "migrations/sqlite")
	v.SetDefault("security.trusted_proxies", []string{}) // Empty by default - don't trust proxy headers unless explicitly configured
	v.SetDefault("security.secure_cookies", false)

	// Rate limiter defaults - submissions are much tighter than page views
	v.SetDefault("rate_limiter.rps", 10)
	v.SetDefault("rate_limiter.burst", 20)
	v.SetDefault("rate_limiter.enabled", true)
	v.SetDefault("rate_limiter.submission_rps", 0.05)
	v.SetDefault("rate_limiter.submission_burst", 3)

	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 1025)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@huette9.de")

	v.SetDefault("mail.owner_name", "Hütte9")
	v.SetDefault("mail.owner_email", "info@huette9.de")
	v.SetDefault("mail.reply_to", "")

	// Backup defaults
	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.interval", "24h")
	v.SetDefault("backup.path", "./backups")
	v.SetDefault("backup.retention_days", 7)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.loki_enabled", false)
	v.SetDefault("logging.loki_url", "http://localhost:3100")
	v.SetDefault("logging.loki_labels", map[string]string{
		"app":         "huette9",
		"environment": "development",
	})
	v.SetDefault("logging.loki_batch_size", 10)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific environment variables
	v.BindEnv("database.dsn", "DATABASE_DSN")
	v.BindEnv("smtp.username", "SMTP_USERNAME")
	v.BindEnv("smtp.password", "SMTP_PASSWORD")
	v.BindEnv("mail.owner_email", "OWNER_EMAIL")

	var cfg Config
	err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err != nil {
		return nil, err
	}

	// Validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates configuration / Valide la configuration
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateLocales(); err != nil {
		return err
	}

	if err := c.validateMail(); err != nil {
		return err
	}

	if err := c.validateRateLimiter(); err != nil {
		return err
	}

	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Server.BaseURL == "" {
		return errors.New("server.base_url is required")
	}
	// Production links go into visitor inboxes, never over plain HTTP
	if c.IsProduction() && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		return errors.New("server.base_url must use https in production")
	}
	return nil
}

// validateDatabase validates database configuration
func (c *Config) validateDatabase() error {
	validDBTypes := []string{"sqlite", "mysql", "postgres", "postgresql", ""}
	dbType := strings.ToLower(c.Database.Type)

	if dbType != "" && !slices.Contains(validDBTypes, dbType) {
		return errors.New("database.type must be one of: sqlite, mysql, postgres")
	}

	// Production-specific database validation
	if c.IsProduction() && c.Database.DSN == "" {
		return errors.New("database.dsn is required in production")
	}

	return nil
}

// validateLocales validates localization configuration
func (c *Config) validateLocales() error {
	if len(c.Site.SupportedLocales) == 0 {
		return errors.New("site.supported_locales must not be empty")
	}

	if !slices.Contains(c.Site.SupportedLocales, c.Site.DefaultLocale) {
		return errors.New("site.default_locale must appear in site.supported_locales")
	}

	return nil
}

// validateMail validates mail addressing configuration
func (c *Config) validateMail() error {
	if c.SMTP.From == "" {
		return errors.New("smtp.from is required")
	}

	if c.IsProduction() && c.Mail.OwnerEmail == "" {
		return errors.New("mail.owner_email is required in production")
	}

	return nil
}

// validateRateLimiter validates rate limiter configuration
func (c *Config) validateRateLimiter() error {
	if !c.RateLimiter.Enabled {
		return nil
	}

	if c.RateLimiter.RPS <= 0 {
		return errors.New("rate_limiter.rps must be positive when enabled")
	}

	if c.RateLimiter.Burst <= 0 {
		return errors.New("rate_limiter.burst must be positive when enabled")
	}

	if c.RateLimiter.SubmissionRPS <= 0 {
		return errors.New("rate_limiter.submission_rps must be positive when enabled")
	}

	if c.RateLimiter.SubmissionBurst <= 0 {
		return errors.New("rate_limiter.submission_burst must be positive when enabled")
	}

	return nil
}
