package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("PORT", "")
	os.Unsetenv("STORAGE_DRIVER")
	os.Unsetenv("PORT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "gpt-4o", cfg.LLMModel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "teste.env")
	require.NoError(t, os.WriteFile(path, []byte("STORAGE_DRIVER=SQLite\nSQLITE_PATH=/tmp/x.db\nCORS_ORIGINS=http://a.com, http://b.com\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("STORAGE_DRIVER")
		os.Unsetenv("SQLITE_PATH")
		os.Unsetenv("CORS_ORIGINS")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.AllowedOrigins())
}

func TestValidate(t *testing.T) {
	cfg := &Configuration{StorageDriver: "mongo"}
	assert.Error(t, cfg.Validate())

	cfg = &Configuration{StorageDriver: "firestore"}
	assert.Error(t, cfg.Validate())

	cfg = &Configuration{StorageDriver: "cassandra"}
	assert.Error(t, cfg.Validate())

	cfg = &Configuration{StorageDriver: " Mongo ", MongoURL: "mongodb://localhost:27017"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, StorageMongo, cfg.StorageDriver)
}
