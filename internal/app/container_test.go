package app_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/net-idea/huette9/internal/app"
	"github.com/net-idea/huette9/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContainerConfig(t *testing.T) *config.Config {
	t.Helper()

	// Create a temporary directory with a dummy migration
	migrationsDir, err := os.MkdirTemp("", "migrations")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(migrationsDir) })

	upFile := filepath.Join(migrationsDir, "000001_create_initial_schema.up.sql")
	err = os.WriteFile(upFile, []byte("CREATE TABLE test (id INT);"), 0644)
	require.NoError(t, err)

	return &config.Config{
		Server: config.ServerConfig{
			BaseURL: "http://localhost:8080",
		},
		Site: config.SiteConfig{
			Name:             "Hütte9",
			DefaultLocale:    "de",
			SupportedLocales: []string{"de", "en"},
		},
		Database: config.DatabaseConfig{
			DSN:            ":memory:",
			MigrationsPath: migrationsDir,
		},
		SMTP: config.SMTPConfig{
			Host: "localhost",
			Port: 1025,
			From: "test@example.com",
		},
		Mail: config.MailConfig{
			OwnerEmail: "owner@example.com",
		},
		RateLimiter: config.RateLimiterConfig{
			Enabled:         true,
			RPS:             10,
			Burst:           20,
			SubmissionRPS:   0.05,
			SubmissionBurst: 3,
		},
	}
}

// A single container per test binary: metrics register against the default
// Prometheus registry, so a second NewContainer would panic on duplicates.
func TestNewContainer(t *testing.T) {
	container, err := app.NewContainer(testContainerConfig(t))
	require.NoError(t, err)
	require.NotNil(t, container)
	defer container.Close()

	// Assert that all fields are initialized
	assert.NotNil(t, container.DB)
	assert.NotNil(t, container.BookingRepo)
	assert.NotNil(t, container.ContactRepo)
	assert.NotNil(t, container.BookingSvc)
	assert.NotNil(t, container.ContactSvc)
	assert.NotNil(t, container.MailMan)
	assert.NotNil(t, container.Config)
	assert.NotNil(t, container.Metrics)

	// Check if the database connection is alive
	err = container.DB.Ping()
	assert.NoError(t, err)

	// Check if the migration was applied
	rows, err := container.DB.Query("SELECT id FROM test")
	assert.NoError(t, err)
	if rows != nil {
		rows.Close()
	}

	// Submission limiter wired with its configured burst
	require.NotNil(t, container.Limiter)
	for range 3 {
		assert.True(t, container.Limiter.Allow("client"))
	}
	assert.False(t, container.Limiter.Allow("client"))
}
