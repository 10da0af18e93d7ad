package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Remote store backends
const (
	RemoteStoreSQL   = "sql"
	RemoteStoreRedis = "redis"
)

// Duplicate survivor policies
const (
	PolicyLocalFirst     = "local-first"
	PolicyLatestRevision = "latest-revision"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	LocalCachePath string
	RemoteStore    string
	RedisAddr      string
	RedisPassword  string

	NormsPath       string
	DuplicatePolicy string

	JWTSecret     string
	TokenDuration time.Duration
	CORSOrigins   []string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	Debug bool
}

// Load reads configuration from a .env file when present, then environment variables with defaults
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DatabasePath:    getEnv("DB_PATH", "./caregame.db"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MigrationsPath:  os.Getenv("MIGRATIONS_PATH"),
		LocalCachePath:  getEnv("LOCAL_CACHE_PATH", "./data/game_sessions.json"),
		RemoteStore:     strings.ToLower(getEnv("REMOTE_STORE", RemoteStoreSQL)),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		NormsPath:       os.Getenv("NORMS_PATH"),
		DuplicatePolicy: strings.ToLower(getEnv("DUPLICATE_POLICY", PolicyLocalFirst)),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenDuration:   getEnvAsDuration("TOKEN_DURATION", 24*time.Hour),
		CORSOrigins:     getEnvAsList("CORS_ORIGINS", []string{"*"}),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:    os.Getenv("SES_FROM_EMAIL"),
		SESFromName:     getEnv("SES_FROM_NAME", "Care Game"),
		Debug:           getEnvAsBool("DEBUG", false),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = randomSecret()
		log.Println("WARNING: JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
	}

	return cfg
}

// Validate reports settings that cannot be served
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case "sqlite", "sqlite3", "postgres", "postgresql", "mysql":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DatabaseType)
	}
	if c.DatabaseType != "sqlite" && c.DatabaseType != "sqlite3" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for DB_TYPE %q", c.DatabaseType)
	}
	switch c.RemoteStore {
	case RemoteStoreSQL, RemoteStoreRedis:
	default:
		return fmt.Errorf("unsupported REMOTE_STORE %q", c.RemoteStore)
	}
	switch c.DuplicatePolicy {
	case PolicyLocalFirst, PolicyLatestRevision:
	default:
		return fmt.Errorf("unsupported DUPLICATE_POLICY %q", c.DuplicatePolicy)
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("TOKEN_DURATION must be positive")
	}
	return nil
}

// EmailEnabled reports whether a sender address is configured
func (c *Config) EmailEnabled() bool {
	return c.SESFromEmail != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func randomSecret() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("failed to generate secret: %v", err))
	}
	return base64.StdEncoding.EncodeToString(key)
}
