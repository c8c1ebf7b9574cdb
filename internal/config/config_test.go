package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsFromEnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("HERD_API_BASE_URL=http://herd.local\n"), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "http://herd.local", cfg.HerdAPI.BaseURL)
	require.Equal(t, 15*time.Second, cfg.HerdAPI.Timeout)
	require.Equal(t, KeystoreSQLite, cfg.Keystore.Driver)
	require.Equal(t, "herdbook.db", cfg.Keystore.SQLitePath)
	require.Equal(t, "*/15 * * * *", cfg.Scheduler.RosterRefreshCron)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingBaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.EqualError(t, err, "HERD_API_BASE_URL must be provided")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("HERD_API_BASE_URL", "http://herd.local")
	t.Setenv("HERD_API_TIMEOUT", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorContains(t, err, "invalid HERD_API_TIMEOUT")
}

func TestValidate_MongoKeystoreNeedsURI(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: "8080"},
		HerdAPI:   HerdAPIConfig{BaseURL: "http://herd.local", Timeout: time.Second},
		Keystore:  KeystoreConfig{Driver: KeystoreMongoDB},
		MongoDB:   MongoDBConfig{DBName: "herdbook"},
		Scheduler: SchedulerConfig{RosterRefreshCron: "@hourly"},
	}
	require.ErrorContains(t, cfg.Validate(), "MONGODB_URI")

	cfg.Keystore.Driver = "redis"
	require.ErrorContains(t, cfg.Validate(), "unsupported KEYSTORE_DRIVER")
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "HERD_API_BASE_URL", "HERD_API_TIMEOUT", "KEYSTORE_DRIVER",
		"KEYSTORE_SQLITE_PATH", "MONGODB_URI", "MONGODB_DB_NAME", "ROSTER_REFRESH_CRON",
		"GOOGLE_SHEETS_CREDENTIALS_PATH", "IMPORT_MAPPING_PATH", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
