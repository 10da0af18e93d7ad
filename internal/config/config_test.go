package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_TYPE", "REMOTE_STORE", "DUPLICATE_POLICY", "TOKEN_DURATION", "CORS_ORIGINS", "JWT_SECRET", "SES_FROM_EMAIL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.RemoteStore != RemoteStoreSQL {
		t.Errorf("RemoteStore = %q, want %q", cfg.RemoteStore, RemoteStoreSQL)
	}
	if cfg.DuplicatePolicy != PolicyLocalFirst {
		t.Errorf("DuplicatePolicy = %q, want %q", cfg.DuplicatePolicy, PolicyLocalFirst)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Errorf("TokenDuration = %v, want 24h", cfg.TokenDuration)
	}
	if cfg.JWTSecret == "" {
		t.Error("expected a generated JWT secret")
	}
	if cfg.EmailEnabled() {
		t.Error("email should be disabled without SES_FROM_EMAIL")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_TYPE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/caregame")
	t.Setenv("REMOTE_STORE", "redis")
	t.Setenv("DUPLICATE_POLICY", "latest-revision")
	t.Setenv("TOKEN_DURATION", "90m")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://games.example.com ,")
	t.Setenv("DEBUG", "true")
	t.Setenv("SES_FROM_EMAIL", "reports@example.com")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("DatabaseType = %q, want postgres", cfg.DatabaseType)
	}
	if cfg.RemoteStore != RemoteStoreRedis {
		t.Errorf("RemoteStore = %q", cfg.RemoteStore)
	}
	if cfg.DuplicatePolicy != PolicyLatestRevision {
		t.Errorf("DuplicatePolicy = %q", cfg.DuplicatePolicy)
	}
	if cfg.TokenDuration != 90*time.Minute {
		t.Errorf("TokenDuration = %v", cfg.TokenDuration)
	}
	want := []string{"http://localhost:3000", "https://games.example.com"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if !cfg.EmailEnabled() {
		t.Error("email should be enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		DatabaseType:    "sqlite",
		RemoteStore:     RemoteStoreSQL,
		DuplicatePolicy: PolicyLocalFirst,
		TokenDuration:   time.Hour,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown db", func(c *Config) { c.DatabaseType = "oracle" }, true},
		{"mysql without url", func(c *Config) { c.DatabaseType = "mysql" }, true},
		{"mysql with url", func(c *Config) { c.DatabaseType = "mysql"; c.DatabaseURL = "u:p@/db" }, false},
		{"unknown remote", func(c *Config) { c.RemoteStore = "s3" }, true},
		{"unknown policy", func(c *Config) { c.DuplicatePolicy = "newest" }, true},
		{"zero token duration", func(c *Config) { c.TokenDuration = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
