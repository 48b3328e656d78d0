package config

import (
	"os"
	"testing"
)

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"Production environment", "production", true},
		{"Development environment", "development", false},
		{"Empty environment", "", false},
		{"Other environment", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.env}
			if got := cfg.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"Development environment", "development", true},
		{"Production environment", "production", false},
		{"Empty environment", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.env}
			if got := cfg.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func validTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "8080",
			BaseURL: "http://localhost:8080",
		},
		Site: SiteConfig{
			Name:             "Hütte9",
			DefaultLocale:    "de",
			SupportedLocales: []string{"de", "en"},
		},
		SMTP: SMTPConfig{
			From: "no-reply@example.com",
		},
		RateLimiter: RateLimiterConfig{
			Enabled:         true,
			RPS:             10,
			Burst:           20,
			SubmissionRPS:   0.05,
			SubmissionBurst: 3,
		},
		Environment: "development",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Config)
		expectError   bool
		errorContains string
	}{
		{
			name:        "Valid development config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:          "Missing server port",
			mutate:        func(c *Config) { c.Server.Port = "" },
			expectError:   true,
			errorContains: "port",
		},
		{
			name:          "Missing base URL",
			mutate:        func(c *Config) { c.Server.BaseURL = "" },
			expectError:   true,
			errorContains: "base_url",
		},
		{
			name: "Production with plain HTTP base URL",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.Database.DSN = "production.db"
				c.Mail.OwnerEmail = "owner@example.com"
				c.Server.BaseURL = "http://huette9.de"
			},
			expectError:   true,
			errorContains: "https",
		},
		{
			name: "Valid production config",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.Database.DSN = "production.db"
				c.Mail.OwnerEmail = "owner@example.com"
				c.Server.BaseURL = "https://huette9.de"
			},
			expectError: false,
		},
		{
			name: "Production without database DSN",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.Mail.OwnerEmail = "owner@example.com"
				c.Server.BaseURL = "https://huette9.de"
				c.Database.DSN = ""
			},
			expectError:   true,
			errorContains: "database.dsn",
		},
		{
			name: "Production without owner email",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.Database.DSN = "production.db"
				c.Server.BaseURL = "https://huette9.de"
				c.Mail.OwnerEmail = ""
			},
			expectError:   true,
			errorContains: "owner_email",
		},
		{
			name:          "Invalid database type",
			mutate:        func(c *Config) { c.Database.Type = "oracle" },
			expectError:   true,
			errorContains: "database.type",
		},
		{
			name:          "Default locale not supported",
			mutate:        func(c *Config) { c.Site.DefaultLocale = "fr" },
			expectError:   true,
			errorContains: "default_locale",
		},
		{
			name:          "Empty supported locales",
			mutate:        func(c *Config) { c.Site.SupportedLocales = nil },
			expectError:   true,
			errorContains: "supported_locales",
		},
		{
			name:          "Missing SMTP from address",
			mutate:        func(c *Config) { c.SMTP.From = "" },
			expectError:   true,
			errorContains: "smtp.from",
		},
		{
			name:          "Rate limiter enabled with zero RPS",
			mutate:        func(c *Config) { c.RateLimiter.RPS = 0 },
			expectError:   true,
			errorContains: "rps",
		},
		{
			name:          "Rate limiter enabled with zero burst",
			mutate:        func(c *Config) { c.RateLimiter.Burst = 0 },
			expectError:   true,
			errorContains: "burst",
		},
		{
			name:          "Rate limiter enabled with zero submission RPS",
			mutate:        func(c *Config) { c.RateLimiter.SubmissionRPS = 0 },
			expectError:   true,
			errorContains: "submission_rps",
		},
		{
			name: "Rate limiter disabled skips limiter checks",
			mutate: func(c *Config) {
				c.RateLimiter = RateLimiterConfig{Enabled: false}
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				} else if tt.errorContains != "" {
					if !contains(err.Error(), tt.errorContains) {
						t.Errorf("Expected error containing '%s', got '%s'", tt.errorContains, err.Error())
					}
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	// Clear environment variables to test defaults
	os.Clearenv()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config with defaults: %v", err)
	}

	// Verify some defaults
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}

	if cfg.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", cfg.Environment)
	}

	if cfg.Site.DefaultLocale != "de" {
		t.Errorf("Expected default locale 'de', got %s", cfg.Site.DefaultLocale)
	}

	if cfg.RateLimiter.SubmissionBurst != 3 {
		t.Errorf("Expected default submission burst 3, got %d", cfg.RateLimiter.SubmissionBurst)
	}
}

func TestLoadConfig_WithEnvironmentVariables(t *testing.T) {
	// Set environment variables
	os.Setenv("APP_SERVER_PORT", "9000")
	os.Setenv("APP_ENVIRONMENT", "test")
	defer func() {
		os.Unsetenv("APP_SERVER_PORT")
		os.Unsetenv("APP_ENVIRONMENT")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("Expected port from env 9000, got %s", cfg.Server.Port)
	}

	if cfg.Environment != "test" {
		t.Errorf("Expected environment from env 'test', got %s", cfg.Environment)
	}
}

// Helper function
func contains(s, substr string) bool {
	return len(s) > 0 && len(substr) > 0 && len(s) >= len(substr) &&
		(s == substr || (len(s) > len(substr) && searchString(s, substr)))
}

func searchString(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
