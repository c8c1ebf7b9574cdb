package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Keystore drivers supported for the advisory API key slot.
const (
	KeystoreSQLite  = "sqlite"
	KeystoreMongoDB = "mongodb"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	HerdAPI   HerdAPIConfig
	Keystore  KeystoreConfig
	MongoDB   MongoDBConfig
	Scheduler SchedulerConfig
	Sheets    SheetsConfig
	Import    ImportConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// HerdAPIConfig points at the remote herd record service.
type HerdAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// KeystoreConfig selects where the advisory API key survives restarts.
type KeystoreConfig struct {
	Driver     string
	SQLitePath string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SchedulerConfig holds the background refresh schedule.
type SchedulerConfig struct {
	RosterRefreshCron string
}

// SheetsConfig enables Google Sheets as an import source when credentials are present.
type SheetsConfig struct {
	CredentialsPath string
}

// ImportConfig holds the optional on-disk mapping document.
type ImportConfig struct {
	MappingPath string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	timeout, err := time.ParseDuration(getenvWithDefault("HERD_API_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HERD_API_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		HerdAPI: HerdAPIConfig{
			BaseURL: os.Getenv("HERD_API_BASE_URL"),
			Timeout: timeout,
		},
		Keystore: KeystoreConfig{
			Driver:     getenvWithDefault("KEYSTORE_DRIVER", KeystoreSQLite),
			SQLitePath: getenvWithDefault("KEYSTORE_SQLITE_PATH", "herdbook.db"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "herdbook"),
		},
		Scheduler: SchedulerConfig{
			RosterRefreshCron: getenvWithDefault("ROSTER_REFRESH_CRON", "*/15 * * * *"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
		},
		Import: ImportConfig{
			MappingPath: os.Getenv("IMPORT_MAPPING_PATH"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.HerdAPI.BaseURL == "" {
		return errors.New("HERD_API_BASE_URL must be provided")
	}
	if c.HerdAPI.Timeout <= 0 {
		return errors.New("HERD_API_TIMEOUT must be positive")
	}

	switch c.Keystore.Driver {
	case KeystoreSQLite:
		if c.Keystore.SQLitePath == "" {
			return errors.New("KEYSTORE_SQLITE_PATH must be provided")
		}
	case KeystoreMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided when KEYSTORE_DRIVER=mongodb")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("unsupported KEYSTORE_DRIVER %q", c.Keystore.Driver)
	}

	if c.Scheduler.RosterRefreshCron == "" {
		return errors.New("ROSTER_REFRESH_CRON must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
