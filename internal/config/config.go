package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Backend kinds selectable via DB_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config holds application configuration values loaded from environment
// variables.
type Config struct {
	HTTPPort string

	// DBBackend selects the storage implementation once at startup; nothing
	// downstream branches on it again.
	DBBackend   string
	DatabaseURL string // postgres backend
	SQLitePath  string // sqlite backend

	// BotBackendURL and BotSharedSecret configure the relay. Both may be
	// empty; chat requests then fail with a configuration error.
	BotBackendURL   string
	BotSharedSecret string
	// BotProxyURL, when set, routes relay calls through a local forward
	// proxy (the overlay tunnel) via a curl subprocess.
	BotProxyURL string

	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables. It looks for a
// .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.")
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DBBackend:       strings.ToLower(getEnv("DB_BACKEND", BackendSQLite)),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "chatrelay.db"),
		BotBackendURL:   getEnv("BOT_BACKEND_URL", ""),
		BotSharedSecret: getEnv("BOT_SHARED_SECRET", ""),
		BotProxyURL:     getEnv("BOT_PROXY_URL", ""),
	}

	origins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	switch cfg.DBBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DB_BACKEND=postgres requires DATABASE_URL to be set")
		}
	case BackendSQLite, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown DB_BACKEND %q (expected postgres, sqlite or memory)", cfg.DBBackend)
	}

	if cfg.BotBackendURL == "" || cfg.BotSharedSecret == "" {
		log.Println("Warning: BOT_BACKEND_URL / BOT_SHARED_SECRET not set; chat requests will fail until configured.")
	}

	log.Printf("Loaded config: Port=%s, Backend=%s, BotBackend=%s, BotProxy=%s",
		cfg.HTTPPort, cfg.DBBackend, redact(cfg.BotBackendURL), redact(cfg.BotProxyURL))

	return cfg, nil
}

func redact(v string) string {
	if v == "" {
		return "(unset)"
	}
	return "***"
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
